package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/dropoff-location/internal/core/domain"
	"github.com/99minutos/dropoff-location/internal/core/ports"
)

// StoreWriter submits positions straight into an append-only store. The key
// the store assigns is logged but not handed back to the caller.
type StoreWriter struct {
	store ports.LocationAppender
	log   zerolog.Logger
}

func NewStoreWriter(store ports.LocationAppender, log zerolog.Logger) *StoreWriter {
	return &StoreWriter{store: store, log: log}
}

// Save satisfies ports.LocationWriter.
func (w *StoreWriter) Save(ctx context.Context, pos domain.Position) error {
	id, err := w.store.Append(ctx, pos)
	if err != nil {
		return &domain.PersistenceError{Message: err.Error(), Err: err}
	}
	w.log.Debug().Str("id", id).Msg("location written to store")
	return nil
}
