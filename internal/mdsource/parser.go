// Package mdsource imports cards from markdown files, locally or from
// git repositories. A card file is a sequence of F:/B:/T: blocks
// (front, back, comma-separated tags), separated by "---" or by the
// next F: line.
package mdsource

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// CardDraft is parsed card content before it enters the deck.
type CardDraft struct {
	Front string
	Back  string
	Tags  []string
}

const (
	frontPrefix = "F:"
	backPrefix  = "B:"
	tagsPrefix  = "T:"
)

type state int

const (
	seeking state = iota
	readingFront
	readingBack
	readingTags
)

// ParseFile reads a file from the given path and extracts all drafts.
func ParseFile(path string) ([]CardDraft, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all drafts. Blocks may
// span multiple lines; a draft without a front line is discarded.
func Parse(r io.Reader) ([]CardDraft, error) {
	scanner := bufio.NewScanner(r)
	var drafts []CardDraft
	var current CardDraft
	var block []string
	currentState := seeking

	closeBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch currentState {
		case readingFront:
			current.Front = content
		case readingBack:
			current.Back = content
		case readingTags:
			current.Tags = splitTags(content)
		}
		block = nil
	}

	finishDraft := func() {
		closeBlock()
		if current.Front != "" {
			drafts = append(drafts, current)
		}
		current = CardDraft{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == "---" {
			finishDraft()
			continue
		}

		switch {
		case strings.HasPrefix(line, frontPrefix):
			// A new front always starts a new draft.
			if currentState != seeking {
				finishDraft()
			}
			currentState = readingFront
			block = append(block, trimPrefix(line, frontPrefix))
		case strings.HasPrefix(line, backPrefix):
			closeBlock()
			currentState = readingBack
			block = append(block, trimPrefix(line, backPrefix))
		case strings.HasPrefix(line, tagsPrefix):
			closeBlock()
			currentState = readingTags
			block = append(block, trimPrefix(line, tagsPrefix))
		default:
			if currentState != seeking {
				block = append(block, line)
			}
		}
	}

	finishDraft()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}

func trimPrefix(line, prefix string) string {
	content := line[len(prefix):]
	return strings.TrimPrefix(content, " ")
}

func splitTags(content string) []string {
	var tags []string
	for _, tag := range strings.Split(content, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
