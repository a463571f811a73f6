package protocol

import (
	"weatherline/internal/pkg/errs"
)

// Typed request extraction. Each protocol state expects one request shape;
// the As* methods validate an inbound Message against that shape once, so the
// session machine never probes raw fields itself. Validation failures come
// back as the CustomError that should be reported to the peer.

// RoleRequest is the opening message of a session. The original client may
// piggyback the first sub-machine field (filePath for admin, username for
// user) on the same line, so both are carried through when present.
type RoleRequest struct {
	Role     string
	FilePath string
	Username string
}

// AsRoleRequest validates the opening message of a session.
func (m *Message) AsRoleRequest() (RoleRequest, *errs.CustomError) {
	if m.Role == nil {
		return RoleRequest{}, errs.NewError(errs.ErrMissingRole)
	}
	req := RoleRequest{Role: *m.Role}
	if req.Role != RoleAdmin && req.Role != RoleUser {
		return RoleRequest{}, errs.NewError(errs.ErrInvalidRole)
	}
	if m.FilePath != nil {
		req.FilePath = *m.FilePath
	}
	if m.Username != nil {
		req.Username = *m.Username
	}
	return req, nil
}

// AdminRequest is a message in the admin upload state.
type AdminRequest struct {
	FilePath string
}

// AsAdminRequest validates a message received while awaiting an upload path.
func (m *Message) AsAdminRequest() (AdminRequest, *errs.CustomError) {
	if m.FilePath == nil {
		return AdminRequest{}, errs.NewError(errs.ErrMissingFilePath)
	}
	return AdminRequest{FilePath: *m.FilePath}, nil
}

// UsernameRequest is a message received while awaiting a username.
type UsernameRequest struct {
	Username string
}

// AsUsernameRequest validates a message received while awaiting a username.
func (m *Message) AsUsernameRequest() (UsernameRequest, *errs.CustomError) {
	if m.Username == nil || *m.Username == "" {
		return UsernameRequest{}, errs.NewError(errs.ErrMissingUsername)
	}
	return UsernameRequest{Username: *m.Username}, nil
}

// LocationRequest is a message received while awaiting the initial location.
type LocationRequest struct {
	CurrentLocation string
}

// AsLocationRequest validates a message received while awaiting a location.
func (m *Message) AsLocationRequest() (LocationRequest, *errs.CustomError) {
	if m.CurrentLocation == nil {
		return LocationRequest{}, errs.NewError(errs.ErrMissingLocation)
	}
	return LocationRequest{CurrentLocation: *m.CurrentLocation}, nil
}

// MenuRequest is a message received while a user session is in the menu state.
type MenuRequest struct {
	Type            string
	CurrentLocation string
}

// AsMenuRequest validates a message received in the menu state. The
// updateLocation type additionally requires a currentLocation field on the
// same message.
func (m *Message) AsMenuRequest() (MenuRequest, *errs.CustomError) {
	if m.Type == nil {
		return MenuRequest{}, errs.NewError(errs.ErrMissingType)
	}
	req := MenuRequest{Type: *m.Type}
	switch req.Type {
	case TypeGetWeather, TypeDisconnect:
	case TypeUpdateLocation:
		if m.CurrentLocation == nil {
			return MenuRequest{}, errs.NewError(errs.ErrMissingLocation)
		}
		req.CurrentLocation = *m.CurrentLocation
	default:
		return MenuRequest{}, errs.NewError(errs.ErrInvalidType)
	}
	return req, nil
}
