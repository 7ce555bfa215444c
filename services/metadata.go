package services

import (
	"strings"

	"contentbot/config"
	"contentbot/types"
)

const maxTitleLength = 100

const descriptionFooter = `...

🔥 Subscribe for daily motivation!
💪 Never give up on your dreams!

#motivation #success #mindset #inspiration #personaldevelopment #selfimprovement #goals #positivity #nevergiveup #believeinyourself

This video is designed to inspire and motivate you to achieve your goals and overcome any obstacles in your path.`

var videoTags = []string{
	"motivation",
	"motivational video",
	"success",
	"inspiration",
	"self improvement",
	"personal development",
	"mindset",
	"never give up",
	"believe in yourself",
	"achieve your goals",
	"overcome obstacles",
	"daily motivation",
	"positive thinking",
}

// GenerateMetadata builds the upload metadata for a video
func GenerateMetadata(title, script, categoryID string) types.VideoMetadata {
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > maxTitleLength {
		title = string(r[:maxTitleLength-3]) + "..."
	}
	if categoryID == "" {
		categoryID = config.YouTubeCategoryID
	}

	tags := make([]string, len(videoTags))
	copy(tags, videoTags)

	return types.VideoMetadata{
		Title:       title,
		Description: truncate(script, config.DescriptionExcerptLength) + descriptionFooter,
		Tags:        tags,
		CategoryID:  categoryID,
	}
}
