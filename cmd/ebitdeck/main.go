package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/nicky-ayoub/ebitdeck/internal/scan"
	"github.com/nicky-ayoub/ebitdeck/internal/service"
	"github.com/nicky-ayoub/ebitdeck/internal/ui"
)

const (
	// wheelStep converts one wheel notch into an offset nudge in pixels.
	wheelStep = 40.0
	// clickSlop is the maximum net gesture movement, per axis, that still
	// counts as a click on a card rather than a drag.
	clickSlop = 4
)

type Game struct {
	deck   *ui.Deck
	strip  *ui.CardStrip
	motion *ui.Motion

	ScannerService *service.ScannerService
	ImageService   *service.ImageService

	scanCompleteChan chan bool
	shuffleOnLoad    bool

	// Net-movement anchor of the current gesture, for click detection.
	pressX, pressY int

	// Metadata for the selected card, loaded in the background.
	selectedInfo   string
	infoJobChan    chan string
	infoResultChan chan infoResult
}

// infoResult holds the result of a background card metadata load.
type infoResult struct {
	path    string
	summary string
	err     error
}

// pollInput gathers all raw input events for the current frame into an
// InputState struct.
func (g *Game) pollInput() ui.InputState {
	wheelX, wheelY := ebiten.Wheel()
	mx, my := ebiten.CursorPosition()
	return ui.InputState{
		Quit:             inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		ToggleFullscreen: inpututil.IsKeyJustPressed(ebiten.KeyF11),
		ShuffleDeck:      inpututil.IsKeyJustPressed(ebiten.KeyS),

		WheelX:     wheelX,
		WheelY:     wheelY,
		ShiftHeld:  ebiten.IsKeyPressed(ebiten.KeyShift),
		DragStart:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		DragActive: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		MouseX:     mx,
		MouseY:     my,
	}
}

func (g *Game) Update() error {
	// 1. Poll all input at the beginning of the frame.
	input := g.pollInput()

	// 2. Handle non-state-dependent inputs immediately.
	if input.Quit {
		return ebiten.Termination
	}
	if input.ToggleFullscreen {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if input.ShuffleDeck {
		g.deck.Shuffle()
	}

	// 3. Process results from the background metadata loader.
	select {
	case result := <-g.infoResultChan:
		if result.err != nil {
			log.Printf("Error reading card info %s: %v", result.path, result.err)
			g.selectedInfo = ""
		} else {
			g.selectedInfo = result.summary
		}
	default:
		// No metadata loaded this frame.
	}

	// 4. Drive the viewport motion.
	g.handleMotion(input)

	// 5. Update UI components.
	w, _ := ebiten.WindowSize()
	g.strip.Update(g.motion.Offset(), w)

	return nil
}

// handleMotion routes the frame's pointer input into the motion
// controller and advances coasting. Bounds are derived fresh on every
// use so a window resize or a newly loaded tall card is respected
// immediately.
func (g *Game) handleMotion(input ui.InputState) {
	b := g.bounds()

	if input.DragStart {
		g.motion.PointerDown(float64(input.MouseX), float64(input.MouseY))
		g.pressX, g.pressY = input.MouseX, input.MouseY
	}

	if g.motion.Dragging() {
		if input.DragActive {
			g.motion.PointerMove(float64(input.MouseX), float64(input.MouseY), b)
		} else {
			// Button released: a gesture that barely moved is a click
			// on the card under the cursor, not a pan.
			if abs(input.MouseX-g.pressX) <= clickSlop && abs(input.MouseY-g.pressY) <= clickSlop {
				g.selectCardAt(input.MouseX, input.MouseY)
			}
			g.motion.PointerUp()
		}
	}

	// Wheel scrolling nudges the offset through the same clamp. The
	// strip is horizontal, so plain wheel motion maps to X; Shift maps
	// it to Y for panning tall cards. Ignored mid-drag: the gesture
	// owns the offset until release.
	if !g.motion.Dragging() && (input.WheelX != 0 || input.WheelY != 0) {
		dx := input.WheelX * wheelStep
		dy := 0.0
		if input.ShiftHeld {
			dy = input.WheelY * wheelStep
		} else {
			dx += input.WheelY * wheelStep
		}
		g.motion.NudgeBy(dx, dy, b)
	}

	g.motion.Step(b)
}

// bounds derives the legal offset range from the current window and
// content extents.
func (g *Game) bounds() ui.Bounds {
	w, h := ebiten.WindowSize()
	contentW, contentH := g.strip.ContentSize()
	return ui.BoundsFor(float64(w), float64(h), contentW, contentH, ui.VerticalPad)
}

// selectCardAt selects the card under the given screen position, if any,
// and kicks off a metadata load for the overlay.
func (g *Game) selectCardAt(x, y int) {
	idx := g.strip.CardAt(x, y, g.motion.Offset())
	g.deck.SetSelected(idx)
	g.selectedInfo = ""
	if idx < 0 {
		return
	}
	item, err := g.deck.Card(idx)
	if err != nil {
		return
	}
	select {
	case g.infoJobChan <- item.Path:
	default:
		// Loader is busy; the selection stays, just without metadata.
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.strip.Draw(screen, g.motion.Offset())

	state := ""
	switch {
	case g.motion.Dragging():
		state = " (dragging)"
	case g.motion.Coasting():
		state = " (coasting)"
	}
	overlay := fmt.Sprintf("Cards: %d%s", g.deck.Count(), state)
	if g.selectedInfo != "" {
		overlay += "\n" + g.selectedInfo
	}
	ebitenutil.DebugPrint(screen, overlay)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	// By returning the window's dimensions, we make the logical screen size
	// the same as the window size. This gives us a 1:1 pixel mapping and
	// keeps the offset and bounds in real pixels.
	return outsideWidth, outsideHeight
}

// initServices initializes the backend services.
func (g *Game) initServices() error {
	fileScanner := scan.FileScannerImpl{}
	g.ScannerService = service.NewScannerService(&fileScanner)
	g.ImageService = service.NewImageService()
	return nil
}

func (g *Game) AddLogMessage(msg string) {
	fmt.Println(msg)
}

// cardInfoLoader is a background worker that loads card metadata.
func (g *Game) cardInfoLoader() {
	for path := range g.infoJobChan {
		info, err := g.ImageService.GetCardInfo(path)
		res := infoResult{path: path, err: err}
		if err == nil {
			res.summary = info.Summary()
		}
		g.infoResultChan <- res
	}
}

// loadCards scans the given root directory for image files in a
// background goroutine and populates the deck in batches, so the strip
// becomes pannable while the scan is still running.
func (g *Game) loadCards(root string) {
	// Signal completion when this function exits, no matter how.
	defer func() {
		select {
		case g.scanCompleteChan <- true:
		default:
		}
	}()

	g.deck.Clear()

	cardChan := g.ScannerService.Scan(root, g.AddLogMessage)

	const batchSize = 1000
	const batchTimeout = 100 * time.Millisecond

	batch := make(scan.FileItems, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()

	for {
		select {
		case item, ok := <-cardChan:
			if !ok { // Channel is closed, scanner is done.
				if len(batch) > 0 {
					g.deck.AddCards(batch)
				}
				g.AddLogMessage(fmt.Sprintf("Loaded %d cards from %s", g.deck.Count(), root))
				return
			}
			batch = append(batch, item)
			if len(batch) >= batchSize {
				g.deck.AddCards(batch)
				batch = make(scan.FileItems, 0, batchSize) // Reset batch, keeping capacity.
			}
		case <-ticker.C:
			// Timeout reached, add whatever is in the batch so the deck
			// grows visibly during a long scan.
			if len(batch) > 0 {
				g.deck.AddCards(batch)
				batch = make(scan.FileItems, 0, batchSize)
			}
		}
	}
}

// runInitialScanAndWait starts the background card scan and waits for it
// to complete or time out.
func (g *Game) runInitialScanAndWait(dir string) {
	go g.loadCards(dir)

	timeout := time.NewTimer(10 * time.Second)
	defer timeout.Stop()

	select {
	case <-g.scanCompleteChan:
		g.AddLogMessage("Initial scan completed.")
		if g.shuffleOnLoad {
			g.deck.Shuffle()
		}
	case <-timeout.C:
		g.AddLogMessage("Timeout waiting for cards to load. Please check the directory.")
	}
}

func main() {
	// Define command-line flags
	imageDirFlag := flag.String("dir", ".", "Directory to scan for card images. Can also be provided as a positional argument.")
	shuffleFlag := flag.Bool("shuffle", false, "Shuffle the deck once the initial scan completes")
	flag.Parse()

	// If -dir is not used, check for a positional argument.
	dirPath := *imageDirFlag
	dirFlagIsSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "dir" {
			dirFlagIsSet = true
		}
	})
	if !dirFlagIsSet && flag.NArg() > 0 {
		dirPath = flag.Arg(0)
	}

	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("ebitdeck")

	game := &Game{
		deck:             ui.NewDeck(),
		motion:           ui.NewMotion(ui.DefaultMotionConfig()),
		scanCompleteChan: make(chan bool, 1),
		shuffleOnLoad:    *shuffleFlag,
		infoJobChan:      make(chan string, 1),
		infoResultChan:   make(chan infoResult, 1),
	}
	if err := game.initServices(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Start the background worker for card metadata.
	go game.cardInfoLoader()

	// Start initial scan and wait for it to complete or timeout.
	go game.runInitialScanAndWait(dirPath)

	// Initialize UI components that depend on services.
	game.strip = ui.NewCardStrip(game.deck, game.ImageService)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
