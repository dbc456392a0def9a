package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func TestRegistryAddAndLookup(t *testing.T) {
	r := NewRegistry()
	g := newTestGame(t)
	id := r.Add(g)
	if id != g.ID || r.Len() != 1 || !r.Has(id) {
		t.Fatalf("Add: id=%s len=%d", id, r.Len())
	}

	var name string
	if err := r.View(id, func(g *Game) { name = g.Players[0].Name }); err != nil {
		t.Fatalf("View: %v", err)
	}
	if name != "WHITE" {
		t.Errorf("name = %q", name)
	}

	if err := r.Do(uuid.New(), func(*Game) error { return nil }); errors.Cause(err) != ErrNotFound {
		t.Errorf("Do on unknown game error = %v", err)
	}
}

func TestRegistryDoPropagatesError(t *testing.T) {
	r := NewRegistry()
	id := r.Add(newTestGame(t))
	err := r.Do(id, func(g *Game) error {
		_, err := g.Play(4)
		return err
	})
	if errors.Cause(err) != ErrNotRolled {
		t.Errorf("Do error = %v, want ErrNotRolled", err)
	}
}

func TestRegistrySubscribe(t *testing.T) {
	r := NewRegistry()
	id := r.Add(newTestGame(t))

	ch, cancel, err := r.Subscribe(id, 4)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	first := <-ch
	if first.Phase != "awaiting_roll" {
		t.Errorf("initial phase = %s", first.Phase)
	}

	if err := r.Do(id, func(g *Game) error {
		_, err := g.SetRoll(3, 4)
		return err
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	select {
	case s := <-ch:
		if s.Phase != "moving" || s.Dice != [2]int{3, 4} {
			t.Errorf("update = phase %s dice %v", s.Phase, s.Dice)
		}
	case <-time.After(time.Second):
		t.Fatal("no update after Do")
	}

	// Failed transactions publish nothing.
	r.Do(id, func(g *Game) error { return ErrGameOver })
	select {
	case s := <-ch:
		t.Errorf("unexpected update %+v", s)
	default:
	}
}

func TestRegistryCancelAndRemove(t *testing.T) {
	r := NewRegistry()
	id := r.Add(newTestGame(t))

	ch1, cancel1, _ := r.Subscribe(id, 1)
	ch2, cancel2, _ := r.Subscribe(id, 1)
	<-ch1
	<-ch2

	cancel1()
	if _, ok := <-ch1; ok {
		t.Error("ch1 still open after cancel")
	}
	cancel1()

	r.Remove(id)
	if _, ok := <-ch2; ok {
		t.Error("ch2 still open after Remove")
	}
	cancel2()
	if r.Len() != 0 {
		t.Errorf("Len = %d after Remove", r.Len())
	}
	if _, _, err := r.Subscribe(id, 1); errors.Cause(err) != ErrNotFound {
		t.Errorf("Subscribe after Remove error = %v", err)
	}
}

func TestRegistrySerializesDo(t *testing.T) {
	r := NewRegistry()
	id := r.Add(newTestGame(t))

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Do(id, func(*Game) error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()
	if counter != 1600 {
		t.Errorf("counter = %d, want 1600", counter)
	}
}
