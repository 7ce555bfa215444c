package services

import (
	"context"
	"fmt"

	"contentbot/journal"
	"contentbot/types"
)

// Creator turns downloaded media into a finished video with a script and
// voiceover
type Creator struct {
	journal   *journal.Journal
	script    *ScriptWriter
	topics    *TopicSource
	voice     *Voiceover
	assembler *Assembler
}

// NewCreator creates a new video creator. topics may be nil.
func NewCreator(j *journal.Journal, script *ScriptWriter, topics *TopicSource, voice *Voiceover, assembler *Assembler) *Creator {
	return &Creator{
		journal:   j,
		script:    script,
		topics:    topics,
		voice:     voice,
		assembler: assembler,
	}
}

// Synthesize writes the script, renders the voiceover and assembles the video
func (c *Creator) Synthesize(ctx context.Context, media *types.DownloadedMedia, workspace string) (*types.CreatedVideo, error) {
	c.journal.Info("Starting video creation process", creatorSource)

	title, script := c.script.Write(ctx, c.pickTopic(ctx))

	voiceover, err := c.voice.Generate(ctx, script, workspace)
	if err != nil {
		c.journal.Error(fmt.Sprintf("Video creation failed: %v", err), creatorSource)
		return nil, err
	}

	videoPath, err := c.assembler.Assemble(ctx, media, voiceover, workspace)
	if err != nil {
		c.journal.Error(fmt.Sprintf("Video creation failed: %v", err), creatorSource)
		return nil, err
	}

	c.journal.Success("Video created successfully", creatorSource)
	return &types.CreatedVideo{VideoPath: videoPath, Script: script, Title: title}, nil
}

func (c *Creator) pickTopic(ctx context.Context) *types.Topic {
	if c.topics == nil {
		return nil
	}
	topic, err := c.topics.Pick(ctx)
	if err != nil {
		c.journal.Error(fmt.Sprintf("Failed to pick a topic: %v", err), creatorSource)
		return nil
	}
	c.journal.Info(fmt.Sprintf("Using topic: %s", topic.Title), creatorSource)
	return topic
}
