package game

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nexium-server/internal/exploration"
)

// A failed exploration still burns energy and teaches the crew, but it must
// not advance the player's exploration tally.
func TestExploreDeltasCountOnlySuccesses(t *testing.T) {
	failed := &exploration.ExploreOutcome{Success: false, Experience: 12, EnergyCost: 10}

	playerDelta, shipDelta := exploreDeltas(failed)
	if playerDelta.TotalExplored != 0 {
		t.Errorf("failed exploration advanced total_explored by %d", playerDelta.TotalExplored)
	}
	if playerDelta.Energy != -10 {
		t.Errorf("energy delta = %d, want -10", playerDelta.Energy)
	}
	if !playerDelta.Currency.IsZero() {
		t.Errorf("failed exploration granted %s currency", playerDelta.Currency)
	}
	if shipDelta.Experience != 12 {
		t.Errorf("experience delta = %d, want 12", shipDelta.Experience)
	}

	succeeded := &exploration.ExploreOutcome{
		Success:        true,
		CurrencyReward: 40,
		Experience:     15,
		LevelUp:        true,
		EnergyCost:     10,
	}

	playerDelta, shipDelta = exploreDeltas(succeeded)
	if playerDelta.TotalExplored != 1 {
		t.Errorf("successful exploration advanced total_explored by %d, want 1", playerDelta.TotalExplored)
	}
	if !playerDelta.Currency.Equal(decimal.NewFromInt(40)) {
		t.Errorf("currency delta = %s, want 40", playerDelta.Currency)
	}
	if shipDelta.Level != 1 {
		t.Errorf("level delta = %d, want 1", shipDelta.Level)
	}
}

func TestPlayerLockIdentity(t *testing.T) {
	s := &Service{locks: make(map[int64]*sync.Mutex)}

	if s.playerLock(1) != s.playerLock(1) {
		t.Error("same player must map to the same mutex")
	}
	if s.playerLock(1) == s.playerLock(2) {
		t.Error("different players must map to different mutexes")
	}
}

// Two goroutines locking the same pair in opposite argument order must not
// deadlock; ordered acquisition makes the pair symmetric.
func TestLockPairOppositeOrder(t *testing.T) {
	s := &Service{locks: make(map[int64]*sync.Mutex)}

	done := make(chan struct{}, 2)
	for i := 0; i < 50; i++ {
		go func() {
			unlock := s.lockPair(1, 2)
			unlock()
			done <- struct{}{}
		}()
		go func() {
			unlock := s.lockPair(2, 1)
			unlock()
			done <- struct{}{}
		}()

		for j := 0; j < 2; j++ {
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("lockPair deadlocked on opposite acquisition order")
			}
		}
	}
}

func TestPlayerLockSerializesCriticalSections(t *testing.T) {
	s := &Service{locks: make(map[int64]*sync.Mutex)}

	var inSection, maxInSection int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			lock := s.playerLock(7)
			lock.Lock()
			defer lock.Unlock()

			mu.Lock()
			inSection++
			if inSection > maxInSection {
				maxInSection = inSection
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inSection--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxInSection != 1 {
		t.Errorf("critical section concurrency = %d, want 1", maxInSection)
	}
}
