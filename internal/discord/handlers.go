package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/marek/faf/internal/capture"
)

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore own messages
	if m.Author.ID == s.State.User.ID {
		return
	}

	// Only respond to DMs or when mentioned
	isDM := m.GuildID == ""
	isMentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			isMentioned = true
			break
		}
	}

	if !isDM && !isMentioned {
		return
	}

	content := strings.TrimSpace(stripMention(m.Content, s.State.User.ID))
	if content == "" {
		return
	}

	// Show typing indicator
	s.ChannelTyping(m.ChannelID)

	// Every message is one independent capture; the bot keeps no
	// conversation state.
	res, err := b.capture.Capture(context.Background(), content)
	if err != nil {
		log.Printf("capture error: %v", err)
		s.ChannelMessageSend(m.ChannelID, "Could not capture that: "+err.Error())
		return
	}

	// Discord has a 2000 char limit; split if needed
	for _, chunk := range splitMessage(formatResult(res), 2000) {
		s.ChannelMessageSend(m.ChannelID, chunk)
	}
}

func formatResult(res *capture.Result) string {
	if res.Stored == nil {
		if res.Reply != "" {
			return res.Reply
		}
		return "No action selected."
	}
	st := res.Stored
	return fmt.Sprintf("Saved %s (%s): %s", st.Record.Command, humanize.Bytes(uint64(st.Size)), st.Path)
}

func stripMention(s, userID string) string {
	s = strings.ReplaceAll(s, "<@"+userID+">", "")
	s = strings.ReplaceAll(s, "<@!"+userID+">", "")
	return s
}

func splitMessage(s string, maxLen int) []string {
	if len(s) <= maxLen {
		return []string{s}
	}
	var chunks []string
	for len(s) > 0 {
		end := maxLen
		if end > len(s) {
			end = len(s)
		}
		// Try to split at a newline
		if idx := strings.LastIndex(s[:end], "\n"); idx > 0 {
			end = idx + 1
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks
}
