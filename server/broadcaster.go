package server

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"rarefeed/models"
)

// Broadcaster fans refresh events out to connected SSE clients.
type Broadcaster struct {
	sync.RWMutex
	refreshClients map[string]chan models.FeedRefreshedEvent
}

// Constructor
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		refreshClients: make(map[string]chan models.FeedRefreshedEvent, 100),
	}
}

func (b *Broadcaster) BroadcastRefresh(event models.FeedRefreshedEvent) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.refreshClients {
		select {
		case client <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping refresh event for client: %v", id)
		}
	}
}

// Function to add a client to the broadcaster
func (b *Broadcaster) AddClient(key string) chan models.FeedRefreshedEvent {
	b.Lock()
	defer b.Unlock()

	client := make(chan models.FeedRefreshedEvent, 10)
	b.refreshClients[key] = client

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.refreshClients),
	}).Info("Adding client to broadcaster")

	return client
}

// Function to remove a client from the broadcaster
func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.refreshClients[key]; ok { // Check if the client exists
		close(client)                 // Safely close the channel
		delete(b.refreshClients, key) // Remove from the map
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.refreshClients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for key, client := range b.refreshClients {
		close(client)
		delete(b.refreshClients, key)
	}
}
