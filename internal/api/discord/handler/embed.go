package handler

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	colorBlurple = 0x5865f2
	colorGreen   = 0x00c851
	colorRed     = 0xed4245
	colorOrange  = 0xff6600
	colorGold    = 0xffd700
	colorDark    = 0x2b2d31
	colorProfile = 0xe8082c
)

// Guild emojis.
const (
	emojiApproved   = "<a:Aprobado:1399874076402778122>"
	emojiRejected   = "<a:Reprobado:1399874121055076372>"
	emojiWarn       = "<:adv:1468761911821602947>"
	emojiDeny       = "<:equiz:1468761969518706708>"
	emojiNerd       = "<a:Nerd:1357113815623536791>"
	emojiMember     = "<:Miembro:1473969750139994112>"
	emojiModerators = "<:Moderadores:1473981745689923728>"
	emojiSupport    = "<:Soporte:1467253761377304850>"
	emojiRoblox     = "<:roblox:1468196317514956905>"
	emojiDiscord    = "<:discord:1468196272199569410>"
	emojiLoading    = "<a:cargando:1456888296381874207>"
	emojiBan        = "<:BAN:1350470431441682514>"
	emojiConfig     = "<:config:1473970137089445909>"
	emojiDance      = "<a:dancergb:1357113390413123775>"
	emojiChik       = "<:chik:1473970031489454100>"
	emojiCheck      = "<a:check1:1468762093741412553>"
	emojiPinned     = "<a:fijado:1468193352439824384>"
	emojiLinks      = "<:enlaces:1468199583418155197>"
	emojiEhh        = "<:Ehh:1457908929504870475>"
)

const (
	blank            = "​"
	maxFieldValueLen = 1024
)

func newEmbed(color int, title string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:     color,
		Title:     title,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func spacer() *discordgo.MessageEmbedField {
	return field(blank, blank, false)
}

func footer(text string) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: text}
}

func thumbnail(url string) *discordgo.MessageEmbedThumbnail {
	if url == "" {
		return nil
	}
	return &discordgo.MessageEmbedThumbnail{URL: url}
}

func image(url string) *discordgo.MessageEmbedImage {
	if url == "" {
		return nil
	}
	return &discordgo.MessageEmbedImage{URL: url}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func roleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}

func link(text, url string) string {
	if url == "" {
		return text
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}

// truncate shortens s to at most n runes, ending with "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// numberedMentions renders "**1.** <@id>" lines, stopping before the field limit.
func numberedMentions(ids []string) string {
	var b strings.Builder
	for n, id := range ids {
		line := fmt.Sprintf("**%d.** %s", n+1, mention(id))
		if b.Len()+len(line)+len("\n…") > maxFieldValueLen {
			b.WriteString("\n…")
			break
		}
		if n > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

func button(label, customID string, style discordgo.ButtonStyle) discordgo.Button {
	return discordgo.Button{Label: label, CustomID: customID, Style: style}
}

func row(components ...discordgo.MessageComponent) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: components}
}

func noPings() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}
