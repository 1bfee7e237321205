package membership

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
)

// maxProbes bounds the defensive existence re-check loop so a corrupt
// directory cannot spin the allocator forever.
const maxProbes = 1000

// Directory is the read surface the allocator needs over issued
// membership IDs.
type Directory interface {
	// MaxSuffix returns the greatest numeric suffix among membership IDs
	// of the form "<prefix>-<digits>", or 0 when none exist. IDs whose
	// suffix does not parse count as 0.
	MaxSuffix(ctx context.Context, prefix string) (int, error)

	// Exists reports whether the exact membership ID is already issued.
	Exists(ctx context.Context, membershipID string) (bool, error)
}

// Allocator issues sequential membership IDs per prefix, e.g.
// "FM-000012". Allocations for the same prefix are serialized; the
// database's unique constraint remains the final arbiter for races
// across processes.
type Allocator struct {
	dir Directory

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAllocator(dir Directory) *Allocator {
	return &Allocator{dir: dir, locks: make(map[string]*sync.Mutex)}
}

func (a *Allocator) prefixLock(prefix string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[prefix]
	if !ok {
		l = &sync.Mutex{}
		a.locks[prefix] = l
	}
	return l
}

// Allocate returns the next free membership ID for the prefix. The
// candidate is the greatest existing suffix plus one, re-checked against
// the directory before being handed out.
func (a *Allocator) Allocate(ctx context.Context, prefix string) (string, error) {
	lock := a.prefixLock(prefix)
	lock.Lock()
	defer lock.Unlock()

	max, err := a.dir.MaxSuffix(ctx, prefix)
	if err != nil {
		return "", err
	}

	n := max + 1
	for probe := 0; probe < maxProbes; probe++ {
		id := Format(prefix, n)
		taken, err := a.dir.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
		n++
	}
	return "", fmt.Errorf("no free membership id under prefix %q after %d probes", prefix, maxProbes)
}

// Format renders a membership ID as "<prefix>-<6-digit zero-padded n>".
func Format(prefix string, n int) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// ParseSuffix extracts the numeric suffix of a membership ID under the
// given prefix. Unparseable suffixes are treated as 0.
func ParseSuffix(membershipID, prefix string) int {
	rest, ok := strings.CutPrefix(membershipID, prefix+"-")
	if !ok {
		return 0
	}
	n := 0
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// RandomPassword returns a throwaway credential for staff-created
// accounts; the member resets it through the forgot-password flow.
func RandomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RolePrefix derives an ID prefix from a role name: the upper-cased
// initials of its first two words, e.g. "Fellow Member" -> "FM",
// "Associate" -> "A". Used when staff add members directly.
func RolePrefix(roleName string) string {
	words := strings.Fields(roleName)
	if len(words) > 2 {
		words = words[:2]
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteRune([]rune(w)[0])
	}
	return strings.ToUpper(b.String())
}
