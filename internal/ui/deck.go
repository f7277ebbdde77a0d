package ui

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/nicky-ayoub/ebitdeck/internal/scan"
)

// Deck manages the card collection: the scanned image list, the current
// selection, and the display order. The scanner appends from a background
// goroutine while the game loop reads, so all access is mutex-guarded.
type Deck struct {
	mu sync.RWMutex

	cards    scan.FileItems
	selected int // index of the selected card, -1 for none
}

// NewDeck creates an empty deck with no selection.
func NewDeck() *Deck {
	return &Deck{
		cards:    make(scan.FileItems, 0),
		selected: -1,
	}
}

// Clear removes all cards and the selection.
func (d *Deck) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cards = nil
	d.selected = -1
}

// AddCards appends a batch of scanned cards to the deck.
func (d *Deck) AddCards(items scan.FileItems) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cards = append(d.cards, items...)
}

// Count returns the number of cards in the deck.
func (d *Deck) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cards)
}

// Card returns the card at index i, or an error if i is out of range.
func (d *Deck) Card(i int) (scan.FileItem, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.cards) {
		return scan.FileItem{}, fmt.Errorf("card index %d out of bounds", i)
	}
	return d.cards[i], nil
}

// Selected returns the index of the selected card, or -1 if none.
func (d *Deck) Selected() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected
}

// SetSelected sets the selection. Out-of-range indices clear it.
func (d *Deck) SetSelected(i int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.cards) {
		d.selected = -1
		return
	}
	d.selected = i
}

// Shuffle re-deals the deck into a random order. The selection is kept
// on the same card by following it to its new position.
func (d *Deck) Shuffle() {
	d.mu.Lock()
	defer d.mu.Unlock()

	var selectedPath string
	if d.selected >= 0 && d.selected < len(d.cards) {
		selectedPath = d.cards[d.selected].Path
	}

	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})

	if selectedPath == "" {
		return
	}
	d.selected = -1
	for i, c := range d.cards {
		if c.Path == selectedPath {
			d.selected = i
			break
		}
	}
}

// Dump returns a short debug description of the deck.
func (d *Deck) Dump() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fmt.Sprintf("Deck {\nCards:%d\nSelected:%d\n}", len(d.cards), d.selected)
}
