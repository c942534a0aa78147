package grouping

import (
	"time"

	"webex-room-archiver/internal/models"
)

// ContinuationWindow is the largest gap between two messages from the
// same sender that still renders as one visual turn.
const ContinuationWindow = 60 * time.Second

// Group annotates a message list with continuation flags. The input is
// expected in API delivery order (newest first); a message is a
// continuation of its predecessor when both share a sender email and
// their timestamps are strictly less than ContinuationWindow apart. The
// heuristic looks back exactly one message.
//
// When reverse is set the sequence is returned oldest-first and each
// continuation flag moves from position i to position N-i, landing on
// the chronologically later message of the pair.
func Group(messages []models.Message, reverse bool) []models.GroupedMessage {
	n := len(messages)

	flags := make([]bool, n)
	for i := 1; i < n; i++ {
		if messages[i].PersonEmail != messages[i-1].PersonEmail {
			continue
		}
		gap := messages[i-1].Created.Sub(messages[i].Created)
		if gap < 0 {
			gap = -gap
		}
		if gap < ContinuationWindow {
			flags[i] = true
		}
	}

	grouped := make([]models.GroupedMessage, n)

	if reverse {
		mirrored := make([]bool, n)
		for i, flagged := range flags {
			if flagged {
				mirrored[n-i] = true
			}
		}
		for position := range grouped {
			grouped[position] = models.GroupedMessage{
				Message:      messages[n-1-position],
				Continuation: mirrored[position],
			}
		}
		return grouped
	}

	for position := range grouped {
		grouped[position] = models.GroupedMessage{
			Message:      messages[position],
			Continuation: flags[position],
		}
	}
	return grouped
}
