package bot

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler drives the periodic jobs: the reconciliation sweep over
// every guild and the rate limiter garbage collection.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup

	cleanupTicker *time.Ticker
	limiterTicker *time.Ticker
}

func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start launches the background loops and one immediate sweep to
// reconcile whatever changed while the bot was offline.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.runStartupSweep()
	go s.runTickers()
}

func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runStartupSweep() {
	defer s.wg.Done()
	s.sweepAllGuilds()
}

func (s *Scheduler) runTickers() {
	defer s.wg.Done()

	tuning := s.bot.GetConfig().Tuning
	s.cleanupTicker = time.NewTicker(tuning.CleanupInterval)
	s.limiterTicker = time.NewTicker(tuning.LimiterSweep)
	defer s.cleanupTicker.Stop()
	defer s.limiterTicker.Stop()

	for {
		select {
		case <-s.cleanupTicker.C:
			s.sweepAllGuilds()
		case <-s.limiterTicker.C:
			removed := s.bot.Limiter.Sweep(tuning.LimiterSweep)
			if removed > 0 {
				log.Printf("Rate limiter sweep removed %d stale entries", removed)
			}
		case <-s.done:
			return
		}
	}
}

// sweepAllGuilds runs the cleanup over every guild the bot is in,
// with a small worker pool so large bots do not serialize.
func (s *Scheduler) sweepAllGuilds() {
	guilds, err := s.bot.Session.UserGuilds(200, "", "", false)
	if err != nil {
		log.Printf("Cleanup sweep: could not fetch guilds: %v", err)
		return
	}

	var wg sync.WaitGroup
	guard := make(chan struct{}, 3)

	for _, guild := range guilds {
		select {
		case <-s.done:
			return
		default:
		}

		wg.Add(1)
		guard <- struct{}{}
		go func(guildID string) {
			defer func() {
				<-guard
				wg.Done()
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			report, err := s.bot.Service.Cleanup(ctx, guildID, false)
			if err != nil {
				log.Printf("Cleanup sweep failed for guild %s: %v", guildID, err)
				return
			}
			if report.Orphans() > 0 || report.SharesExpired > 0 {
				log.Println(report.String())
			}
		}(guild.ID)
	}

	wg.Wait()
}
