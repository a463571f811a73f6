/*
Package session contains the per-connection protocol state machine for the
weather service.

A session lives exactly as long as its connection. Its protocol state is an
immutable State value; the Machine consumes one inbound message at a time and
returns the responses to send plus the next state, so every transition is
testable without a socket. The Runner (runner.go) binds a machine to a live
connection.
*/
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"weatherline/internal/app/batch"
	"weatherline/internal/app/protocol"
	"weatherline/internal/app/store"
	"weatherline/internal/app/weather"
	"weatherline/internal/pkg/errs"
)

// Phase identifies where a session is in the protocol.
type Phase int

const (
	// PhaseAwaitingRole is the entry state: the first message must select a role.
	PhaseAwaitingRole Phase = iota

	// PhaseAdminUpload awaits a filePath message (or "exit").
	PhaseAdminUpload

	// PhaseUserAwaitUsername awaits the username that registers the user.
	PhaseUserAwaitUsername

	// PhaseUserSetLocation awaits the initial currentLocation.
	PhaseUserSetLocation

	// PhaseUserMenu awaits a menu type request.
	PhaseUserMenu

	// PhaseClosed terminates the session.
	PhaseClosed
)

// State is the protocol state carried between messages. The role is chosen
// once by the first message and never changes for the session's lifetime.
type State struct {
	Phase           Phase
	Role            string
	Username        string
	CurrentLocation string
}

// Closed reports whether the session has terminated.
func (s State) Closed() bool { return s.Phase == PhaseClosed }

// Prompt returns the message to send before reading in the given state, or
// nil when the state sends no prompt. The user sub-machine re-sends its
// prompt on every iteration, matching the menu-driven client flow.
func Prompt(s State) *protocol.Message {
	switch s.Phase {
	case PhaseUserSetLocation:
		return protocol.NewLocationPrompt()
	case PhaseUserMenu:
		return protocol.NewMenu()
	default:
		return nil
	}
}

// Machine evaluates protocol transitions against the store gateway and the
// admin batch source.
type Machine struct {
	store  store.Store
	source batch.Source
	logger zerolog.Logger
}

// NewMachine creates a Machine bound to the shared store and batch source.
func NewMachine(st store.Store, source batch.Source, logger zerolog.Logger) *Machine {
	return &Machine{store: st, source: source, logger: logger}
}

// Step consumes one inbound message in the given state and returns the
// responses to write back followed by the next state.
func (m *Machine) Step(ctx context.Context, s State, msg *protocol.Message) ([]*protocol.Message, State) {
	switch s.Phase {
	case PhaseAwaitingRole:
		return m.stepRole(ctx, s, msg)
	case PhaseAdminUpload:
		return m.stepAdmin(ctx, s, msg)
	case PhaseUserAwaitUsername:
		return m.stepUsername(ctx, s, msg)
	case PhaseUserSetLocation:
		return m.stepSetLocation(ctx, s, msg)
	case PhaseUserMenu:
		return m.stepMenu(ctx, s, msg)
	default:
		return nil, s
	}
}

// stepRole handles the opening message. An invalid or missing role is the one
// protocol error that terminates the session. The original client piggybacks
// the first sub-machine field on the role message, so a piggybacked filePath
// or username is consumed here.
func (m *Machine) stepRole(ctx context.Context, s State, msg *protocol.Message) ([]*protocol.Message, State) {
	req, cerr := msg.AsRoleRequest()
	if cerr != nil {
		s.Phase = PhaseClosed
		return []*protocol.Message{protocol.NewError(cerr.Message)}, s
	}

	s.Role = req.Role
	switch req.Role {
	case protocol.RoleAdmin:
		s.Phase = PhaseAdminUpload
		if req.FilePath != "" {
			return m.stepAdmin(ctx, s, msg)
		}
		return []*protocol.Message{
			protocol.NewError(errs.NewError(errs.ErrMissingFilePath).Message),
			protocol.NewText(protocol.TextUploadReprompt),
		}, s

	default: // protocol.RoleUser, the only other value AsRoleRequest admits
		s.Phase = PhaseUserAwaitUsername
		if req.Username != "" {
			return m.stepUsername(ctx, s, msg)
		}
		return []*protocol.Message{protocol.NewError(errs.NewError(errs.ErrMissingUsername).Message)}, s
	}
}

// stepAdmin handles one admin upload attempt. Only "exit" or a successful
// upload end the session; every failure reports an error and re-prompts.
func (m *Machine) stepAdmin(ctx context.Context, s State, msg *protocol.Message) ([]*protocol.Message, State) {
	req, cerr := msg.AsAdminRequest()
	if cerr != nil {
		return []*protocol.Message{
			protocol.NewError(cerr.Message),
			protocol.NewText(protocol.TextUploadReprompt),
		}, s
	}

	if strings.EqualFold(req.FilePath, "exit") {
		s.Phase = PhaseClosed
		return []*protocol.Message{protocol.NewText(protocol.TextExiting)}, s
	}

	if cerr := m.uploadBatch(ctx, req.FilePath); cerr != nil {
		return []*protocol.Message{
			protocol.NewError(cerr.Message),
			protocol.NewText(protocol.TextUploadReprompt),
		}, s
	}

	s.Phase = PhaseClosed
	return []*protocol.Message{protocol.NewText(protocol.TextUploadSuccess)}, s
}

// uploadBatch fetches, parses, and stores one batch file. Records that fail
// to parse are skipped; a database error aborts the whole batch.
func (m *Machine) uploadBatch(ctx context.Context, path string) *errs.CustomError {
	data, err := m.source.Fetch(ctx, path)
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("Batch fetch failed")
		switch {
		case errors.Is(err, batch.ErrNotFound):
			return errs.NewError(errs.ErrBatchFileNotFound, path)
		case errors.Is(err, batch.ErrRemoteUnavailable):
			return errs.NewError(errs.ErrBatchSourceUnavailable)
		default:
			return errs.NewError(errs.ErrBatchFileInvalid, err.Error())
		}
	}

	records, skipped, err := weather.ParseBatch(data)
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("Batch parse failed")
		return errs.NewError(errs.ErrBatchFileInvalid, err.Error())
	}

	inserted, err := m.store.BulkLoadWeather(ctx, records)
	if err != nil {
		m.logger.Error().Err(err).Str("path", path).Msg("Batch store failed")
		return errs.NewError(errs.ErrStorageFailure)
	}

	m.logger.Info().
		Str("path", path).
		Int("parsed", len(records)).
		Int("skipped", skipped).
		Int("inserted", inserted).
		Msg("Weather batch uploaded")
	return nil
}

// stepUsername registers the user and greets them. Registration is
// idempotent, so a repeated username is welcomed like a new one.
func (m *Machine) stepUsername(ctx context.Context, s State, msg *protocol.Message) ([]*protocol.Message, State) {
	req, cerr := msg.AsUsernameRequest()
	if cerr != nil {
		return []*protocol.Message{protocol.NewError(cerr.Message)}, s
	}

	if err := m.store.RegisterUser(ctx, req.Username, protocol.RoleUser); err != nil {
		m.logger.Error().Err(err).Str("username", req.Username).Msg("User registration failed")
		return []*protocol.Message{protocol.NewError(errs.NewError(errs.ErrStorageFailure).Message)}, s
	}

	s.Username = req.Username
	s.Phase = PhaseUserSetLocation
	return []*protocol.Message{protocol.NewGreeting(req.Username)}, s
}

// stepSetLocation persists the initial location and advances to the menu.
func (m *Machine) stepSetLocation(ctx context.Context, s State, msg *protocol.Message) ([]*protocol.Message, State) {
	req, cerr := msg.AsLocationRequest()
	if cerr != nil {
		return []*protocol.Message{protocol.NewError(cerr.Message)}, s
	}

	if err := m.store.UpdateLocation(ctx, s.Username, req.CurrentLocation); err != nil {
		m.logger.Error().Err(err).Str("username", s.Username).Msg("Location update failed")
		return []*protocol.Message{protocol.NewError(errs.NewError(errs.ErrStorageFailure).Message)}, s
	}

	s.CurrentLocation = req.CurrentLocation
	s.Phase = PhaseUserMenu
	return nil, s
}

// stepMenu dispatches a menu request. Every outcome except disconnect leaves
// the session in the menu state.
func (m *Machine) stepMenu(ctx context.Context, s State, msg *protocol.Message) ([]*protocol.Message, State) {
	req, cerr := msg.AsMenuRequest()
	if cerr != nil {
		return []*protocol.Message{protocol.NewError(cerr.Message)}, s
	}

	switch req.Type {
	case protocol.TypeGetWeather:
		rec, err := m.store.FetchWeather(ctx, s.CurrentLocation)
		if errors.Is(err, store.ErrNotFound) {
			return []*protocol.Message{protocol.NewError(errs.NewError(errs.ErrWeatherNotFound, s.CurrentLocation).Message)}, s
		}
		if err != nil {
			m.logger.Error().Err(err).Str("location", s.CurrentLocation).Msg("Weather lookup failed")
			return []*protocol.Message{protocol.NewError(errs.NewError(errs.ErrStorageFailure).Message)}, s
		}
		return []*protocol.Message{protocol.NewWeatherReport(rec)}, s

	case protocol.TypeUpdateLocation:
		if err := m.store.UpdateLocation(ctx, s.Username, req.CurrentLocation); err != nil {
			m.logger.Error().Err(err).Str("username", s.Username).Msg("Location update failed")
			return []*protocol.Message{protocol.NewError(errs.NewError(errs.ErrStorageFailure).Message)}, s
		}
		s.CurrentLocation = req.CurrentLocation
		return nil, s

	default: // protocol.TypeDisconnect
		s.Phase = PhaseClosed
		return nil, s
	}
}
