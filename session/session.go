package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/directory"
)

// Session is the collector context every reconcile and report runs under.
// It is built from the directory and passed explicitly, never looked up.
type Session struct {
	Collector *collection_model.Collector
	Zone      *collection_model.Zone
	Location  *time.Location
}

func (s *Session) ZoneID() uint {
	return s.Collector.ZoneID
}

// InitialLoadAt is the lower bound of every reconcile window.
func (s *Session) InitialLoadAt() time.Time {
	return s.Collector.InitialLoadAt
}

func (s *Session) CollectorName() string {
	return s.Collector.Name
}

func (s *Session) ZoneName() string {
	if s.Zone == nil {
		return ""
	}
	return s.Zone.Name
}

// New loads the collector by email and its zone. A zone that cannot be
// found leaves Zone nil; only the collector is required.
func New(ctx context.Context, dir directory.Directory, email string, loc *time.Location) (*Session, error) {
	var err error
	if loc == nil {
		loc = time.Local
	}

	collector, err := dir.CollectorByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Collector: collector,
		Location:  loc,
	}

	sess.Zone, err = dir.Zone(ctx, collector.ZoneID)
	if err != nil {
		if !errors.Is(err, directory.ErrZoneNotFound) {
			slog.Error(err.Error())
		}
		sess.Zone = nil
	}

	return sess, nil
}

type Provider interface {
	Current(ctx context.Context) (*Session, error)
}

type Static struct {
	Session *Session
}

// Current implements Provider.
func (s *Static) Current(ctx context.Context) (*Session, error) {
	return s.Session, nil
}

// directoryProvider rebuilds the session on every call so an initial load
// done elsewhere moves the reconcile window.
type directoryProvider struct {
	dir   directory.Directory
	email string
	loc   *time.Location
}

func NewDirectoryProvider(dir directory.Directory, email string, loc *time.Location) Provider {
	return &directoryProvider{
		dir:   dir,
		email: email,
		loc:   loc,
	}
}

// Current implements Provider.
func (d *directoryProvider) Current(ctx context.Context) (*Session, error) {
	return New(ctx, d.dir, d.email, d.loc)
}
