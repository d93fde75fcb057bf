// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"standpress/internal/cache"
	"standpress/internal/canvas"
	"standpress/internal/models"
	"standpress/internal/variables"
)

// Websocket timings of the live editor.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Client message types of the live editor protocol.
const (
	msgAdd          = "add"
	msgUpdate       = "update"
	msgRemove       = "remove"
	msgClick        = "click"
	msgToolbarEnter = "toolbar_enter"
	msgToolbarLeave = "toolbar_leave"
	msgEscape       = "escape"
	msgStyle        = "style"
	msgDragStart    = "drag_start"
	msgDragMove     = "drag_move"
	msgDragStop     = "drag_stop"
	msgResizeStart  = "resize_start"
	msgResizeMove   = "resize_move"
	msgResizeStop   = "resize_stop"
	msgUndo         = "undo"
	msgRedo         = "redo"
	msgSave         = "save"
	msgBackground   = "background"
)

// Server reply types.
const (
	replyState = "state"
	replySaved = "saved"
	replyError = "error"
)

// errBadMessage marks malformed editor messages.
type errBadMessage string

func (e errBadMessage) Error() string { return string(e) }

// editorMessage is one client event. Only the fields its type needs are set.
type editorMessage struct {
	Type     string               `json:"type"`
	ID       string               `json:"id,omitempty"`
	Variable string               `json:"variable,omitempty"`
	Kind     models.ElementKind   `json:"kind,omitempty"`
	Target   *canvas.Target       `json:"target,omitempty"`
	Patch    *canvas.ElementPatch `json:"patch,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	SelectedTemplate      *string `json:"selectedTemplate,omitempty"`
	CustomBackgroundImage *string `json:"customBackgroundImage,omitempty"`
}

// editorState is the full view a client renders from.
type editorState struct {
	canvas.Snapshot
	SelectedTemplate      string            `json:"selectedTemplate"`
	CustomBackgroundImage string            `json:"customBackgroundImage,omitempty"`
	BackgroundImage       string            `json:"backgroundImage,omitempty"`
	CanvasWidth           int               `json:"canvasWidth"`
	CanvasHeight          int               `json:"canvasHeight"`
	Display               map[string]string `json:"display"`
	Version               int               `json:"version"`
	Dirty                 bool              `json:"dirty"`
	Resumed               bool              `json:"resumed,omitempty"`
}

type editorReply struct {
	Type   string         `json:"type"`
	State  *editorState   `json:"state,omitempty"`
	Design *models.Design `json:"design,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// editorSession is the server side of one open designer. It is owned by the
// goroutine serving the connection, so events apply strictly in order.
type editorSession struct {
	api      *API
	userID   uuid.UUID
	proposal *models.Proposal
	design   *models.Design
	editor   *canvas.Editor
	record   variables.Record
	locale   variables.Locale

	selectedTemplate string
	customBackground string
	backgroundImage  string

	// bgEdits counts background changes, which are not part of the element
	// history. Together with the editor revision it forms the change mark
	// compared against the last save and the last draft.
	bgEdits   int
	savedMark int
	draftMark int
	resumed   bool
}

// CoverEditor upgrades to a websocket and runs a live editor session on the
// proposal's cover design.
func (a *API) CoverEditor(w http.ResponseWriter, r *http.Request) {
	proposal, ok := a.loadProposal(w, r)
	if !ok {
		return
	}
	_, userID := tenantOf(r)

	s, err := a.openEditor(r.Context(), proposal, userID, a.locale(r))
	if err != nil {
		slog.Error("editor open failed", "error", err, "proposal_id", proposal.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load cover design.")
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("editor websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("editor session opened", "proposal_id", proposal.ID, "resumed", s.resumed)
	s.serve(r.Context(), conn)
	slog.Info("editor session closed", "proposal_id", proposal.ID, "dirty", s.dirty())
}

// openEditor loads the saved design and resumes an autosaved draft taken
// from the same saved version.
func (a *API) openEditor(ctx context.Context, p *models.Proposal, userID uuid.UUID, loc variables.Locale) (*editorSession, error) {
	design, err := a.loadDesign(p)
	if err != nil {
		return nil, err
	}

	s := &editorSession{
		api:              a,
		userID:           userID,
		proposal:         p,
		design:           design,
		record:           variables.RecordFromProposal(p),
		locale:           loc,
		selectedTemplate: design.SelectedTemplate,
		customBackground: design.CustomBackgroundImage,
		backgroundImage:  design.BackgroundImage,
	}
	elements, nextSeq := design.Elements, design.NextSeq

	if a.Drafts != nil {
		draft, err := a.Drafts.Load(ctx, p.TenantID, p.ID)
		if err != nil {
			slog.Warn("draft load failed", "error", err, "proposal_id", p.ID)
		}
		switch {
		case draft == nil:
		case draft.BaseVersion != design.Version:
			slog.Info("discarding stale draft", "proposal_id", p.ID, "draft_version", draft.BaseVersion, "version", design.Version)
			a.Drafts.Delete(ctx, p.TenantID, p.ID)
		default:
			elements, nextSeq = draft.Elements, max(draft.NextSeq, nextSeq)
			s.selectedTemplate = draft.SelectedTemplate
			s.customBackground = draft.CustomBackgroundImage
			if bg, err := a.resolveBackground(p.TenantID, s.selectedTemplate, s.customBackground); err == nil {
				s.backgroundImage = bg
			}
			s.resumed = true
		}
	}

	s.editor = canvas.NewEditor(canvas.Load(elements, nextSeq, design.CanvasWidth, design.CanvasHeight))
	if s.resumed {
		// A resumed draft differs from the saved design.
		s.savedMark = -1
	}
	s.draftMark = s.changes()
	return s, nil
}

func (s *editorSession) serve(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(maxDesignBody)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	if !send(conn, editorReply{Type: replyState, State: s.state()}) {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("editor websocket read", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg editorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if !send(conn, editorReply{Type: replyError, Error: "Message is not valid JSON."}) {
				return
			}
			continue
		}
		for _, reply := range s.handle(ctx, msg) {
			if !send(conn, reply) {
				return
			}
		}
	}
}

// keepAlive pings the client until done is closed. WriteControl may run
// concurrently with the session's writes.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func send(conn *websocket.Conn, reply editorReply) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(reply); err != nil {
		slog.Warn("editor websocket write", "error", err)
		return false
	}
	return true
}

// handle applies one event and returns the replies to send. Failed events
// leave the session untouched and produce a single error reply.
func (s *editorSession) handle(ctx context.Context, msg editorMessage) []editorReply {
	saved, err := s.apply(ctx, msg)
	if err != nil {
		return []editorReply{{Type: replyError, Error: s.errorText(err)}}
	}
	s.autosave(ctx)

	replies := make([]editorReply, 0, 2)
	if saved != nil {
		replies = append(replies, editorReply{Type: replySaved, Design: saved})
	}
	return append(replies, editorReply{Type: replyState, State: s.state()})
}

// apply routes one client event to the editor. It returns the saved design
// for a successful save.
func (s *editorSession) apply(ctx context.Context, msg editorMessage) (*models.Design, error) {
	e := s.editor
	switch msg.Type {
	case msgAdd:
		if msg.Variable == "" {
			return nil, errBadMessage("variable is required")
		}
		e.AddElement(msg.Variable, msg.Kind)
	case msgUpdate:
		if msg.Patch == nil {
			return nil, errBadMessage("patch is required")
		}
		_, err := e.UpdateElement(msg.ID, *msg.Patch)
		return nil, err
	case msgRemove:
		return nil, e.RemoveElement(msg.ID)
	case msgClick:
		if msg.Target == nil {
			return nil, errBadMessage("target is required")
		}
		return nil, e.Click(*msg.Target)
	case msgToolbarEnter:
		e.ToolbarEnter()
	case msgToolbarLeave:
		e.ToolbarLeave()
	case msgEscape:
		e.Escape()
	case msgStyle:
		if msg.Patch == nil {
			return nil, errBadMessage("patch is required")
		}
		_, err := e.ApplyStyle(*msg.Patch)
		return nil, err
	case msgDragStart:
		return nil, e.BeginDrag(msg.ID)
	case msgDragMove:
		return nil, e.DragMove(msg.X, msg.Y)
	case msgDragStop:
		return nil, e.EndDrag()
	case msgResizeStart:
		return nil, e.BeginResize(msg.ID)
	case msgResizeMove:
		return nil, e.ResizeMove(msg.X, msg.Y, msg.Width, msg.Height)
	case msgResizeStop:
		return nil, e.EndResize()
	case msgUndo:
		return nil, e.Undo()
	case msgRedo:
		return nil, e.Redo()
	case msgBackground:
		return nil, s.setBackground(msg)
	case msgSave:
		return s.save(ctx)
	default:
		return nil, errBadMessage("unknown message type " + msg.Type)
	}
	return nil, nil
}

// setBackground switches between a library background and the custom
// upload. The choice is validated before anything changes.
func (s *editorSession) setBackground(msg editorMessage) error {
	if msg.SelectedTemplate == nil {
		return errBadMessage("selectedTemplate is required")
	}
	custom := s.customBackground
	if msg.CustomBackgroundImage != nil {
		custom = *msg.CustomBackgroundImage
	}
	bg, err := s.api.resolveBackground(s.proposal.TenantID, *msg.SelectedTemplate, custom)
	if err != nil {
		return err
	}
	s.selectedTemplate = *msg.SelectedTemplate
	s.customBackground = custom
	s.backgroundImage = bg
	s.bgEdits++
	return nil
}

func (s *editorSession) save(ctx context.Context) (*models.Design, error) {
	st := s.editor.Store()
	saved, err := s.api.saveDesign(ctx, s.design, s.userID, s.selectedTemplate, s.customBackground, st.List(), st.NextSeq())
	if err != nil {
		return nil, err
	}
	s.design = saved
	s.backgroundImage = saved.BackgroundImage
	s.savedMark = s.changes()
	s.draftMark = s.savedMark
	s.resumed = false
	slog.Info("cover design saved", "proposal_id", saved.ProposalID, "version", saved.Version, "elements", len(saved.Elements))
	return saved, nil
}

// autosave stores the current state as a draft when it changed since the
// last draft and differs from the saved design.
func (s *editorSession) autosave(ctx context.Context) {
	if s.api.Drafts == nil || !s.dirty() || s.changes() == s.draftMark {
		return
	}
	st := s.editor.Store()
	draft := &cache.Draft{
		BaseVersion:           s.design.Version,
		SelectedTemplate:      s.selectedTemplate,
		CustomBackgroundImage: s.customBackground,
		Elements:              st.List(),
		NextSeq:               st.NextSeq(),
	}
	if err := s.api.Drafts.Save(ctx, s.proposal.TenantID, s.proposal.ID, draft); err != nil {
		slog.Warn("draft autosave failed", "error", err, "proposal_id", s.proposal.ID)
		return
	}
	s.draftMark = s.changes()
}

func (s *editorSession) changes() int {
	return s.editor.Revision() + s.bgEdits
}

func (s *editorSession) dirty() bool {
	return s.changes() != s.savedMark
}

func (s *editorSession) state() *editorState {
	snap := s.editor.Snapshot()
	w, h := s.editor.Store().Size()
	return &editorState{
		Snapshot:              snap,
		SelectedTemplate:      s.selectedTemplate,
		CustomBackgroundImage: s.customBackground,
		BackgroundImage:       s.backgroundImage,
		CanvasWidth:           w,
		CanvasHeight:          h,
		Display:               variables.DisplayMap(snap.Elements, s.record, s.locale),
		Version:               s.design.Version,
		Dirty:                 s.dirty(),
		Resumed:               s.resumed,
	}
}

// errorText turns an apply error into the message sent to the client.
// Unexpected failures are logged and reported generically.
func (s *editorSession) errorText(err error) string {
	var bad errBadMessage
	var invalid errInvalidDesign
	switch {
	case errors.As(err, &bad), errors.As(err, &invalid),
		errors.Is(err, canvas.ErrElementNotFound),
		errors.Is(err, canvas.ErrNoSelection),
		errors.Is(err, canvas.ErrNothingToUndo),
		errors.Is(err, canvas.ErrNothingToRedo),
		errors.Is(err, canvas.ErrNoGesture),
		errors.Is(err, canvas.ErrUnknownTarget):
		return err.Error()
	}
	slog.Error("editor event failed", "error", err, "proposal_id", s.proposal.ID)
	return "Internal error."
}
