// Package session runs uploaded-file analyses in the background: a session
// sniffs the file with the parser registry, converts a board definition or
// fits shapers against resonance data, and exposes progress plus the result.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/printwizard/backend/internal/classify"
	"github.com/printwizard/backend/internal/models"
	"github.com/printwizard/backend/internal/parser"
	"github.com/printwizard/backend/internal/resonance"
)

// MaxSessions limits concurrent sessions to prevent resource exhaustion
const MaxSessions = 20

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

// Options carry the per-analysis knobs from the API request.
type Options struct {
	// Board conversion
	Toolboard bool
	Source    string
	MCUName   string

	// Resonance fit
	Axis         string
	MaxSmoothing float64
}

// Manager handles active analysis sessions.
type Manager struct {
	sessions       map[string]*SessionState
	mu             sync.RWMutex
	registry       *parser.Registry
	tempDir        string
	graphMaxPoints int
}

// SessionState holds the session metadata and its result.
type SessionState struct {
	Session      *models.AnalysisSession
	Board        *models.BoardRecord
	Report       *models.ShaperReport
	Samples      *resonance.SampleStore
	LastAccessed time.Time
}

// NewManager creates a session manager. tempDir hosts the per-session
// sample databases; graphMaxPoints caps downsampled graph extraction.
func NewManager(tempDir string, graphMaxPoints int) *Manager {
	if graphMaxPoints <= 0 {
		graphMaxPoints = 2000
	}
	return &Manager{
		sessions:       make(map[string]*SessionState),
		registry:       parser.GetGlobalRegistry(),
		tempDir:        tempDir,
		graphMaxPoints: graphMaxPoints,
	}
}

// StartSession begins analyzing a file in the background.
func (m *Manager) StartSession(fileID, filePath, fileName string, opts Options) (*models.AnalysisSession, error) {
	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()
	session := models.NewAnalysisSession(sessionID, fileID)
	session.Status = models.SessionStatusRunning

	state := &SessionState{
		Session:      session,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	go m.runAnalysis(sessionID, filePath, fileName, opts)

	return session, nil
}

func (m *Manager) runAnalysis(sessionID, filePath, fileName string, opts Options) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Analysis %s] PANIC recovered: %v\n", sessionID[:8], r)
			m.failSession(sessionID, fmt.Sprintf("analysis panicked: %v", r))
		}
	}()

	start := time.Now()
	fmt.Printf("[Analysis %s] Starting analysis of %s\n", sessionID[:8], fileName)

	p, err := m.registry.FindParser(filePath)
	if err != nil {
		m.failSession(sessionID, fmt.Sprintf("failed to find parser: %v", err))
		return
	}
	fmt.Printf("[Analysis %s] Using parser: %s\n", sessionID[:8], p.Name())

	m.setProgress(sessionID, 10, p.Name())

	switch p.Kind() {
	case models.FileKindBoardCfg:
		m.runBoardConversion(sessionID, filePath, fileName, opts, start)
	case models.FileKindCalibrationCSV:
		m.runCalibrationFit(sessionID, filePath, opts, start)
	case models.FileKindAccelCSV:
		m.runAccelFit(sessionID, filePath, opts, start)
	default:
		m.failSession(sessionID, fmt.Sprintf("parser %s produces unsupported kind %s", p.Name(), p.Kind()))
	}
}

func (m *Manager) runBoardConversion(sessionID, filePath, fileName string, opts Options, start time.Time) {
	bf, err := parser.ParseBoardFile(filePath)
	if err != nil {
		m.failSession(sessionID, fmt.Sprintf("board parse failed: %v", err))
		return
	}
	// The upload path holds the file under its uuid; the display name is
	// what carries the board name.
	if fileName != "" {
		bf.Name = parser.BoardNameFromFile(fileName)
	}
	if opts.Source != "" {
		bf.Source = opts.Source
	}
	if opts.Toolboard {
		bf.Toolboard = true
	}
	if opts.MCUName != "" {
		bf.MCUName = opts.MCUName
	}

	board := classify.Board(bf.Name, bf.Aliases, classify.Options{
		Toolboard: bf.Toolboard,
		Source:    bf.Source,
		MCUName:   bf.MCUName,
	})
	if board.ID == "" {
		m.failSession(sessionID, fmt.Sprintf("board name %q produces an empty id", bf.Name))
		return
	}

	fmt.Printf("[Analysis %s] Board %s: %d aliases -> %d ports\n",
		sessionID[:8], board.ID, len(bf.Aliases), board.PortCount())

	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	state.Board = board
	state.Session.Kind = models.AnalysisKindBoard
	state.Session.Status = models.SessionStatusComplete
	state.Session.Progress = 100
	state.Session.PortCount = board.PortCount()
	state.Session.ProcessingTimeMs = time.Since(start).Milliseconds()
}

func (m *Manager) runCalibrationFit(sessionID, filePath string, opts Options, start time.Time) {
	samples, parseErrs, err := parser.NewCalibrationCSVParser().Parse(filePath)
	if err != nil {
		m.failSession(sessionID, fmt.Sprintf("calibration CSV parse failed: %v", err))
		return
	}
	m.setProgress(sessionID, 40, "")
	m.finishFit(sessionID, samples, parseErrs, opts, start)
}

func (m *Manager) runAccelFit(sessionID, filePath string, opts Options, start time.Time) {
	data, parseErrs, err := parser.NewAccelCSVParser().Parse(filePath)
	if err != nil {
		m.failSession(sessionID, fmt.Sprintf("accelerometer CSV parse failed: %v", err))
		return
	}
	m.setProgress(sessionID, 30, "")

	cd := resonance.ProcessAccelData(data)
	if cd == nil {
		m.failSession(sessionID, "accelerometer capture too short for analysis")
		return
	}
	m.setProgress(sessionID, 50, "")

	samples := make([]models.FreqSample, len(cd.FreqBins))
	for i := range cd.FreqBins {
		samples[i] = models.FreqSample{
			Freq: cd.FreqBins[i],
			PSD:  cd.PsdSum[i],
			PSDX: cd.PsdX[i],
			PSDY: cd.PsdY[i],
			PSDZ: cd.PsdZ[i],
		}
	}
	m.finishFit(sessionID, samples, parseErrs, opts, start)
}

// finishFit stores the samples, runs the shaper fit and completes the
// session.
func (m *Manager) finishFit(sessionID string, samples []models.FreqSample, parseErrs []*models.ParseError, opts Options, start time.Time) {
	store, err := resonance.NewSampleStore(m.tempDir, sessionID)
	if err != nil {
		m.failSession(sessionID, fmt.Sprintf("failed to create sample store: %v", err))
		return
	}
	if err := store.Insert(samples); err != nil {
		store.Close()
		m.failSession(sessionID, fmt.Sprintf("failed to store samples: %v", err))
		return
	}
	m.setProgress(sessionID, 70, "")

	report, err := resonance.FitShapers(resonance.NewCalibrationFromSamples(samples), opts.Axis, opts.MaxSmoothing)
	if err != nil {
		store.Close()
		m.failSession(sessionID, fmt.Sprintf("shaper fit failed: %v", err))
		return
	}

	graph, err := store.Graph(context.Background(), m.graphMaxPoints)
	if err != nil {
		fmt.Printf("[Analysis %s] graph extraction failed: %v\n", sessionID[:8], err)
	} else {
		report.Graph = graph
	}

	fmt.Printf("[Analysis %s] Fit complete: %d samples, recommended %s @ %.1f Hz\n",
		sessionID[:8], len(samples), report.Recommended.Type, report.Recommended.Freq)

	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[sessionID]
	if !ok {
		store.Close()
		return
	}
	state.Report = report
	state.Samples = store
	state.Session.Kind = models.AnalysisKindResonance
	state.Session.Status = models.SessionStatusComplete
	state.Session.Progress = 100
	state.Session.SampleCount = len(samples)
	state.Session.ProcessingTimeMs = time.Since(start).Milliseconds()

	errs := make([]models.ParseError, 0, len(parseErrs))
	for _, e := range parseErrs {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	state.Session.Errors = errs
}

func (m *Manager) setProgress(sessionID string, progress float64, parserName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.sessions[sessionID]; ok {
		state.Session.Progress = progress
		if parserName != "" {
			state.Session.ParserName = parserName
		}
	}
}

func (m *Manager) failSession(sessionID, reason string) {
	fmt.Printf("[Analysis %s] ERROR: %s\n", sessionID[:8], reason)

	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	state.Session.Status = models.SessionStatusError
	state.Session.Error = reason
}

// cleanupOldSessionsIfNeeded removes completed sessions when at capacity.
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	toFree := len(m.sessions) - MaxSessions + 1
	for id, state := range m.sessions {
		if toFree == 0 {
			break
		}
		if state.Session.Status != models.SessionStatusComplete &&
			state.Session.Status != models.SessionStatusError {
			continue
		}
		if state.Samples != nil {
			state.Samples.Close()
		}
		delete(m.sessions, id)
		toFree--
		fmt.Printf("[Manager] Cleaned up old session %s to free capacity\n", id[:8])
	}
}

// CleanupOldSessions removes finished sessions older than maxAge, keeping
// sessions accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		if state.Session.Status != models.SessionStatusComplete &&
			state.Session.Status != models.SessionStatusError {
			continue
		}
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			if state.Samples != nil {
				state.Samples.Close()
			}
			delete(m.sessions, id)
			fmt.Printf("[Manager] Cleaned up aged session %s (last accessed %s ago)\n",
				id[:8], time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}

// GetSession returns a session by ID.
func (m *Manager) GetSession(id string) (*models.AnalysisSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return state.Session, true
}

// TouchSession updates the LastAccessed timestamp for a session.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// GetBoard returns the board record of a completed board-conversion session.
func (m *Manager) GetBoard(id string) (*models.BoardRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Board == nil {
		return nil, false
	}
	return state.Board, true
}

// GetReport returns the shaper report of a completed resonance session.
func (m *Manager) GetReport(id string) (*models.ShaperReport, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Report == nil {
		return nil, false
	}
	return state.Report, true
}

// GetGraph extracts up to maxPoints graph points from a session's sample
// store.
func (m *Manager) GetGraph(ctx context.Context, id string, maxPoints int) ([]models.GraphPoint, bool) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	if !ok || state.Samples == nil {
		m.mu.RUnlock()
		return nil, false
	}
	store := state.Samples
	m.mu.RUnlock()

	if maxPoints <= 0 || maxPoints > m.graphMaxPoints {
		maxPoints = m.graphMaxPoints
	}
	points, err := store.Graph(ctx, maxPoints)
	if err != nil {
		fmt.Printf("[Manager] GetGraph error for session %s: %v\n", id[:8], err)
		return nil, false
	}
	return points, true
}

// Snapshot returns a copy of every live session, for the status push feed.
func (m *Manager) Snapshot() []*models.AnalysisSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.AnalysisSession, 0, len(m.sessions))
	for _, state := range m.sessions {
		copied := *state.Session
		out = append(out, &copied)
	}
	return out
}
