package fetch

import (
	"fmt"

	"miniflux.app/client"
)

type MinifluxInfo struct {
	Endpoint string
	ApiKey   string
}

type Miniflux struct {
	client *client.Client
}

func NewMiniflux(mflInfo MinifluxInfo) *Miniflux {
	return &Miniflux{
		client: client.New(mflInfo.Endpoint, mflInfo.ApiKey),
	}
}

func (m *Miniflux) Unread() ([]Entry, error) {
	result, err := m.client.Entries(&client.Filter{Status: "unread"})
	if err != nil {
		return nil, fmt.Errorf("could not fetch unread entries: %w", err)
	}

	entries := make([]Entry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, Entry{
			EntryID: entry.ID,
			FeedID:  entry.FeedID,
			URL:     entry.URL,
			Title:   entry.Title,
		})
	}

	return entries, nil
}

func (m *Miniflux) MarkRead(entryIDs ...int64) error {
	if len(entryIDs) == 0 {
		return nil
	}
	if err := m.client.UpdateEntries(entryIDs, "read"); err != nil {
		return fmt.Errorf("could not mark entries read: %w", err)
	}

	return nil
}
