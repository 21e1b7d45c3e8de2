package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxRoleNameLength = 100
	maxIconURLLength  = 2048
	maxNicknameLength = 32
)

var iconExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// ValidateRoleName checks a role name against Discord constraints and
// local rules. Returns the trimmed name.
func ValidateRoleName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("role name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxRoleNameLength {
		return "", fmt.Errorf("role name cannot exceed %d characters", maxRoleNameLength)
	}
	if strings.ContainsAny(trimmed, "@#:") {
		return "", fmt.Errorf("role name cannot contain @, # or :")
	}
	lower := strings.ToLower(trimmed)
	if lower == "everyone" || lower == "here" {
		return "", fmt.Errorf("role name cannot be a reserved mention")
	}
	return trimmed, nil
}

// ValidateIconURL checks an image URL for use as a role icon and
// returns the trimmed URL.
func ValidateIconURL(raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return "", fmt.Errorf("icon URL cannot be empty")
	}
	if len(url) > maxIconURLLength {
		return "", fmt.Errorf("icon URL cannot exceed %d characters", maxIconURLLength)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("icon URL must start with http:// or https://")
	}
	lower := strings.ToLower(url)
	for _, ext := range iconExtensions {
		if strings.HasSuffix(lower, ext) || strings.Contains(lower, ext+"?") {
			return url, nil
		}
	}
	return "", fmt.Errorf("icon URL must point to a PNG, JPG, GIF or WEBP image")
}

// RenderNickname expands an auto-nickname template for a member.
// {username} is replaced and the result is truncated to the Discord
// nickname limit.
func RenderNickname(template, username string) string {
	nick := strings.ReplaceAll(template, "{username}", username)
	runes := []rune(nick)
	if len(runes) > maxNicknameLength {
		nick = string(runes[:maxNicknameLength])
	}
	return nick
}
