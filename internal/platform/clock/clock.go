package clock

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Clock interface {
	Now() time.Time
}

// Real は設定されたタイムゾーンでの現在時刻
type Real struct{ Loc *time.Location }

func (r Real) Now() time.Time {
	if r.Loc == nil {
		return time.Now().UTC()
	}
	return time.Now().In(r.Loc)
}

func NewReal(tz string) (Real, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Real{}, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return Real{Loc: loc}, nil
}

// Fixed はテスト用の固定時計
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }

type IDGen interface {
	New() (string, error)
}

// ULID は単調増加する ULID を払い出す
type ULID struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULID() *ULID {
	return &ULID{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULID) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
