package ui

import (
	"image"
	"image/color"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/nicky-ayoub/ebitdeck/internal/service"
)

const (
	cardWidth   = 160
	cardSpacing = 16
	slotWidth   = cardWidth + cardSpacing

	// maxCardHeight caps how tall a scaled card may get, so a single
	// extreme aspect ratio does not dominate the content height.
	maxCardHeight = 480

	// placeholderHeight is the assumed card height before its image has
	// been decoded.
	placeholderHeight = cardWidth

	// VerticalPad is the breathing room below the tallest card, part of
	// the content height used for bounds derivation.
	VerticalPad = 32

	// loadAhead is how many extra slots on each side of the visible
	// range get their thumbnails queued in advance.
	loadAhead = 4
)

// cardJob represents a request to load a card's thumbnail.
type cardJob struct {
	path string
}

// cardResult holds a decoded image, ready to be converted to an ebiten.Image.
type cardResult struct {
	path string
	img  image.Image
}

// CardStrip lays the deck out as one horizontal row of fixed-width slots
// and renders it translated by the current offset. It also reports the
// content extents the bounds derivation needs: the total row width from
// slot geometry, and the tallest scaled card seen so far.
type CardStrip struct {
	deck         *Deck
	imageService *service.ImageService

	thumbCache    map[string]*ebiten.Image
	pendingJobs   map[string]bool
	jobQueue      chan cardJob
	resultQueue   chan cardResult
	cacheMu       sync.RWMutex
	pendingJobsMu sync.Mutex

	// tallest is the tallest scaled card height loaded so far, never
	// below placeholderHeight once the deck is non-empty. Guarded by
	// cacheMu together with the cache it is derived from.
	tallest float64
}

// NewCardStrip creates a card strip UI component over the given deck.
func NewCardStrip(deck *Deck, ivs *service.ImageService) *CardStrip {
	cs := &CardStrip{
		deck:         deck,
		imageService: ivs,
		thumbCache:   make(map[string]*ebiten.Image),
		pendingJobs:  make(map[string]bool),
		jobQueue:     make(chan cardJob, 50),
		resultQueue:  make(chan cardResult, 50),
		tallest:      placeholderHeight,
	}

	// Start background loader goroutines
	go cs.loader()
	go cs.loader()

	return cs
}

// loader is a background worker that processes card thumbnail jobs.
func (cs *CardStrip) loader() {
	for job := range cs.jobQueue {
		// Try to get the efficient embedded EXIF thumbnail first.
		img, err := cs.imageService.GetEmbeddedThumbnail(job.path)
		if err != nil {
			// Fallback: load the full image file and decode it.
			file, openErr := os.Open(job.path)
			if openErr != nil {
				cs.pendingJobsMu.Lock()
				delete(cs.pendingJobs, job.path) // Un-pend on error so it can be retried
				cs.pendingJobsMu.Unlock()
				continue // Cannot open, skip.
			}
			decodedImg, _, decodeErr := image.Decode(file)
			file.Close()
			if decodeErr != nil {
				cs.pendingJobsMu.Lock()
				delete(cs.pendingJobs, job.path) // Un-pend on error
				cs.pendingJobsMu.Unlock()
				continue // Cannot decode, skip.
			}
			img = decodedImg
		}

		// Send the decoded standard image back to the main thread for processing.
		cs.resultQueue <- cardResult{path: job.path, img: img}
	}
}

// cardScale returns the scale that fits an image of the given size into
// a cardWidth x maxCardHeight box, preserving aspect ratio.
func cardScale(imgW, imgH int) float64 {
	if imgW <= 0 || imgH <= 0 {
		return 1
	}
	scale := float64(cardWidth) / float64(imgW)
	if hScale := float64(maxCardHeight) / float64(imgH); hScale < scale {
		scale = hScale
	}
	return scale
}

// ContentSize returns the extents of the laid-out deck: the total row
// width and the tallest card height. An empty deck has zero extents.
// Recomputed per call; never cached by callers, so a resize or a newly
// loaded tall card is reflected in the next bounds derivation.
func (cs *CardStrip) ContentSize() (w, h float64) {
	n := cs.deck.Count()
	if n == 0 {
		return 0, 0
	}
	cs.cacheMu.RLock()
	tallest := cs.tallest
	cs.cacheMu.RUnlock()
	return float64(n*slotWidth - cardSpacing), tallest
}

// visibleRange returns the slot indices intersecting the viewport at the
// given offset, widened by ahead slots on each side, clamped to the deck.
func (cs *CardStrip) visibleRange(offset Vec, viewportW, ahead int) (first, last int) {
	n := cs.deck.Count()
	if n == 0 {
		return 0, -1
	}
	first = int(-offset.X)/slotWidth - ahead
	last = int(-offset.X+float64(viewportW))/slotWidth + ahead
	if first < 0 {
		first = 0
	}
	if last >= n {
		last = n - 1
	}
	return first, last
}

// CardAt returns the index of the card under the given screen position
// at the given offset, or -1 if the position falls on spacing or empty
// space. Cards without a loaded thumbnail hit-test at placeholder size.
func (cs *CardStrip) CardAt(screenX, screenY int, offset Vec) int {
	cx := float64(screenX) - offset.X
	cy := float64(screenY) - offset.Y
	if cx < 0 || cy < 0 {
		return -1
	}
	i := int(cx) / slotWidth
	if i >= cs.deck.Count() {
		return -1
	}
	if cx-float64(i*slotWidth) >= cardWidth {
		return -1 // in the spacing gap
	}
	if cy > cs.cardHeight(i) {
		return -1
	}
	return i
}

// cardHeight returns the display height of card i: its scaled thumbnail
// height when loaded, the placeholder height otherwise.
func (cs *CardStrip) cardHeight(i int) float64 {
	item, err := cs.deck.Card(i)
	if err != nil {
		return 0
	}
	cs.cacheMu.RLock()
	defer cs.cacheMu.RUnlock()
	thumb, ok := cs.thumbCache[item.Path]
	if !ok {
		return placeholderHeight
	}
	w, h := thumb.Bounds().Dx(), thumb.Bounds().Dy()
	return float64(h) * cardScale(w, h)
}

// Update drains finished thumbnail loads and queues jobs for the cards
// near the visible range. Must run on the game loop: ebiten.Image
// creation is not thread-safe.
func (cs *CardStrip) Update(offset Vec, viewportW int) {
	// 1. Process any results that have come back from the loader goroutines.
	processing := true
	for processing {
		select {
		case result := <-cs.resultQueue:
			ebitenImg := ebiten.NewImageFromImage(result.img)
			w, h := result.img.Bounds().Dx(), result.img.Bounds().Dy()
			scaledH := float64(h) * cardScale(w, h)

			cs.cacheMu.Lock()
			cs.thumbCache[result.path] = ebitenImg
			if scaledH > cs.tallest {
				cs.tallest = scaledH
			}
			cs.cacheMu.Unlock()

			cs.pendingJobsMu.Lock()
			delete(cs.pendingJobs, result.path)
			cs.pendingJobsMu.Unlock()
		default:
			processing = false
		}
	}

	// 2. Queue jobs for any missing thumbnails near the viewport.
	first, last := cs.visibleRange(offset, viewportW, loadAhead)
	for i := first; i <= last; i++ {
		item, err := cs.deck.Card(i)
		if err != nil {
			continue
		}
		path := item.Path

		cs.cacheMu.RLock()
		_, inCache := cs.thumbCache[path]
		cs.cacheMu.RUnlock()

		if inCache {
			continue
		}

		cs.pendingJobsMu.Lock()
		_, isPending := cs.pendingJobs[path]
		if !isPending {
			cs.pendingJobs[path] = true
			select {
			case cs.jobQueue <- cardJob{path: path}:
			default:
				// Job queue is full, we'll try again on the next frame.
				// To avoid a lock-up, we must release the pendingJobs lock.
				delete(cs.pendingJobs, path)
			}
		}
		cs.pendingJobsMu.Unlock()
	}
}

// Draw renders the visible cards translated by the current offset, with
// a highlight box around the selected card.
func (cs *CardStrip) Draw(screen *ebiten.Image, offset Vec) {
	viewportW := screen.Bounds().Dx()
	first, last := cs.visibleRange(offset, viewportW, 0)
	if last < first {
		return
	}
	selected := cs.deck.Selected()

	cs.cacheMu.RLock()
	defer cs.cacheMu.RUnlock()

	for i := first; i <= last; i++ {
		item, err := cs.deck.Card(i)
		if err != nil {
			continue
		}
		slotX := offset.X + float64(i*slotWidth)
		slotY := offset.Y

		thumb, loaded := cs.thumbCache[item.Path]
		boxH := placeholderHeight
		if loaded {
			imgW, imgH := thumb.Bounds().Dx(), thumb.Bounds().Dy()
			scale := cardScale(imgW, imgH)
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate(slotX, slotY)
			screen.DrawImage(thumb, op)
			boxH = int(float64(imgH) * scale)
		} else {
			// Not loaded yet: draw an empty slot outline.
			gray := color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
			vector.StrokeRect(screen, float32(slotX), float32(slotY),
				cardWidth, placeholderHeight, 1, gray, false)
		}

		if i == selected {
			yellow := color.RGBA{R: 0xff, G: 0xff, B: 0, A: 0xff}
			vector.StrokeRect(screen, float32(slotX), float32(slotY),
				cardWidth, float32(boxH), 3, yellow, false)
		}
	}
}
