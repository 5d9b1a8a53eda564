package services

import (
	"context"
	"fmt"

	"sentryhome/internal/domain"
	"sentryhome/internal/notify"
)

// SessionProvider answers whether a session currently holds a bearer token.
type SessionProvider interface {
	Token(sid string) (string, bool)
}

// GuestCartStore persists the anonymous cart between visits.
type GuestCartStore interface {
	Load(sid string) ([]domain.CartLine, error)
	Save(sid string, lines []domain.CartLine) error
	Delete(sid string) error
}

// CartBackend is the client-side view of the remote per-account cart.
type CartBackend interface {
	GetCart(ctx context.Context, token string) ([]domain.CartLine, error)
	AddItem(ctx context.Context, token string, line domain.CartLine) error
	UpdateItem(ctx context.Context, token, productID string, qty int) error
	RemoveItem(ctx context.Context, token, productID string) error
	ClearCart(ctx context.Context, token string) error
	MergeCart(ctx context.Context, token string, lines []domain.CartLine) error
}

// ChangeBroadcaster carries the fire-and-forget "cart changed" signal.
type ChangeBroadcaster interface {
	Publish()
}

const genericCartErr = "Could not update your cart. Please try again."

// CartSyncService owns the current cart: the remote per-account cart when the
// session is authenticated, the locally persisted guest cart otherwise. The
// mode is re-derived from the session store on every call, so a login or
// logout between two operations routes the next one correctly.
//
// No error escapes a public operation; callers get a boolean result and any
// user-facing explanation arrives through the notification sink.
type CartSyncService struct {
	Sessions SessionProvider
	Guest    GuestCartStore
	Backend  CartBackend
	Changed  ChangeBroadcaster
}

func NewCartSyncService(sessions SessionProvider, guest GuestCartStore, backend CartBackend, changed ChangeBroadcaster) *CartSyncService {
	return &CartSyncService{Sessions: sessions, Guest: guest, Backend: backend, Changed: changed}
}

// GetCart returns the current cart. Failures read as an empty cart: a broken
// remote read is swallowed, and an unparseable guest record is discarded by
// the store.
func (s *CartSyncService) GetCart(ctx context.Context, sid string) []domain.CartLine {
	if token, ok := s.Sessions.Token(sid); ok {
		lines, err := s.Backend.GetCart(ctx, token)
		if err != nil {
			return []domain.CartLine{}
		}
		return lines
	}
	lines, err := s.Guest.Load(sid)
	if err != nil {
		return []domain.CartLine{}
	}
	return lines
}

// AddToCart puts qty units of a product into the current cart. The request is
// clamped twice: first against the product's known stock, then against what
// the cart already holds, so repeated adds cannot exceed the stock ceiling.
// Returns false when nothing was added.
func (s *CartSyncService) AddToCart(ctx context.Context, sid string, p domain.ProductSnapshot, qty int, sink notify.Sink) bool {
	if qty < 1 {
		qty = 1
	}
	maxQty := p.MaxQty()
	if !p.InStock || maxQty <= 0 {
		sink.Warn(fmt.Sprintf("%s is currently unavailable.", p.Name))
		return false
	}
	if qty > maxQty {
		qty = maxQty
		sink.Warn(fmt.Sprintf("Only %d of %s in stock.", maxQty, p.Name))
	}

	// Re-read the live cart so the bound accounts for units already held.
	current := 0
	for _, l := range s.GetCart(ctx, sid) {
		if l.ProductID == p.ProductID {
			current = l.Qty
			break
		}
	}
	if current+qty > maxQty {
		canAdd := maxQty - current
		if canAdd <= 0 {
			sink.Error(fmt.Sprintf("You already have %d of %s in your cart.", current, p.Name))
			return false
		}
		sink.Warn(fmt.Sprintf("Only %d more of %s could be added.", canAdd, p.Name))
		qty = canAdd
	}

	if token, ok := s.Sessions.Token(sid); ok {
		if err := s.Backend.AddItem(ctx, token, p.Line(qty)); err != nil {
			sink.Error(err.Error())
			return false
		}
	} else if !s.upsertGuestLine(sid, p.Line(qty), maxQty, sink) {
		return false
	}

	sink.Success(fmt.Sprintf("Added %d x %s to your cart.", qty, p.Name))
	s.Changed.Publish()
	return true
}

func (s *CartSyncService) upsertGuestLine(sid string, line domain.CartLine, maxQty int, sink notify.Sink) bool {
	lines, err := s.Guest.Load(sid)
	if err != nil {
		sink.Error(genericCartErr)
		return false
	}
	found := false
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Qty += line.Qty
			if lines[i].Qty > maxQty {
				lines[i].Qty = maxQty
			}
			found = true
			break
		}
	}
	if !found {
		if line.Qty > maxQty {
			line.Qty = maxQty
		}
		lines = append(lines, line)
	}
	if err := s.Guest.Save(sid, lines); err != nil {
		sink.Error(genericCartErr)
		return false
	}
	return true
}

// UpdateQuantity sets an existing line to qty, clamped to the stock known at
// add time. A quantity of zero or less removes the line.
func (s *CartSyncService) UpdateQuantity(ctx context.Context, sid, productID string, qty int, sink notify.Sink) bool {
	lines := s.GetCart(ctx, sid)
	var line *domain.CartLine
	for i := range lines {
		if lines[i].ProductID == productID {
			line = &lines[i]
			break
		}
	}
	if line == nil {
		sink.Error("That item is no longer in your cart.")
		return false
	}
	if qty <= 0 {
		return s.RemoveItem(ctx, sid, productID, sink)
	}
	if maxQty := line.MaxQty(); qty > maxQty {
		qty = maxQty
		sink.Warn(fmt.Sprintf("Only %d of %s in stock.", maxQty, line.Name))
	}

	if token, ok := s.Sessions.Token(sid); ok {
		if err := s.Backend.UpdateItem(ctx, token, productID, qty); err != nil {
			sink.Error(err.Error())
			return false
		}
	} else {
		line.Qty = qty
		if err := s.Guest.Save(sid, lines); err != nil {
			sink.Error(genericCartErr)
			return false
		}
	}
	s.Changed.Publish()
	return true
}

// RemoveItem drops a line from the current cart.
func (s *CartSyncService) RemoveItem(ctx context.Context, sid, productID string, sink notify.Sink) bool {
	if token, ok := s.Sessions.Token(sid); ok {
		if err := s.Backend.RemoveItem(ctx, token, productID); err != nil {
			sink.Error(err.Error())
			return false
		}
	} else {
		lines, err := s.Guest.Load(sid)
		if err != nil {
			sink.Error(genericCartErr)
			return false
		}
		kept := lines[:0]
		for _, l := range lines {
			if l.ProductID != productID {
				kept = append(kept, l)
			}
		}
		if err := s.Guest.Save(sid, kept); err != nil {
			sink.Error(genericCartErr)
			return false
		}
	}
	s.Changed.Publish()
	return true
}

// ClearCart empties the current cart.
func (s *CartSyncService) ClearCart(ctx context.Context, sid string, sink notify.Sink) bool {
	if token, ok := s.Sessions.Token(sid); ok {
		if err := s.Backend.ClearCart(ctx, token); err != nil {
			sink.Error(err.Error())
			return false
		}
	} else if err := s.Guest.Delete(sid); err != nil {
		sink.Error(genericCartErr)
		return false
	}
	s.Changed.Publish()
	return true
}

// CartCount re-derives the badge count from a fresh read, so it can never go
// stale relative to the last successful fetch.
func (s *CartSyncService) CartCount(ctx context.Context, sid string) int {
	return domain.CountItems(s.GetCart(ctx, sid))
}

// MergeGuestCart pushes the guest cart into the account cart after login, as
// a single bulk request. One attempt per login: on failure the guest record
// is kept so the next login can retry; on success it is deleted. The backend
// resolves conflicts with lines already in the account cart.
func (s *CartSyncService) MergeGuestCart(ctx context.Context, sid string, sink notify.Sink) {
	token, ok := s.Sessions.Token(sid)
	if !ok {
		return
	}
	lines, err := s.Guest.Load(sid)
	if err != nil || len(lines) == 0 {
		return
	}
	if err := s.Backend.MergeCart(ctx, token, lines); err != nil {
		sink.Error("Could not move your cart to your account. It will be retried on your next login.")
		return
	}
	_ = s.Guest.Delete(sid)
	sink.Success("Your cart has been moved to your account.")
	s.Changed.Publish()
}
