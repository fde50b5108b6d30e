package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/persistence/kv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestStore(t *testing.T) (kv.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return kv.NewRedisStore(client), mr
}

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

func TestRoomRepositoryCreate(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewRoomRepository(store, 10*time.Minute, time.Second, testTracer())

	room, token, err := repo.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(room.ID) != domain.IDLength {
		t.Fatalf("room ID %q has length %d; want %d", room.ID, len(room.ID), domain.IDLength)
	}
	if len(token) != domain.IDLength {
		t.Fatalf("token %q has length %d; want %d", token, len(token), domain.IDLength)
	}
	if len(room.Connected) != 1 || room.Connected[0] != token {
		t.Fatalf("creator token not seated: %v", room.Connected)
	}

	// The record must carry the full lifetime from birth.
	ttl := mr.TTL("meta:" + room.ID)
	if ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Fatalf("room ttl = %v; want about 10m", ttl)
	}
}

func TestRoomRepositoryGetByID(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewRoomRepository(store, 10*time.Minute, time.Second, testTracer())

	created, token, err := repo.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	room, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !room.HasToken(token) {
		t.Fatalf("loaded room lost creator token")
	}
	if room.CreatedAt.IsZero() {
		t.Fatalf("loaded room has zero CreatedAt")
	}

	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("GetByID(nope) = %v; want ErrRoomNotFound", err)
	}
}

func TestRoomRepositoryAdmit(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewRoomRepository(store, 10*time.Minute, time.Second, testTracer())
	ctx := context.Background()

	room, creatorToken, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	guestToken, err := repo.Admit(ctx, room.ID, "")
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if guestToken == creatorToken {
		t.Fatalf("guest got the creator's token")
	}

	// Rejoin with a seated token is idempotent.
	again, err := repo.Admit(ctx, room.ID, guestToken)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again != guestToken {
		t.Fatalf("rejoin minted a new token: %q != %q", again, guestToken)
	}

	loaded, err := repo.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(loaded.Connected) != 2 {
		t.Fatalf("connected = %v; want exactly two seats", loaded.Connected)
	}

	// A third first-time visitor bounces off the seat limit.
	if _, err := repo.Admit(ctx, room.ID, ""); !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("third admit = %v; want ErrRoomFull", err)
	}

	// Rejoin still works at capacity.
	if _, err := repo.Admit(ctx, room.ID, creatorToken); err != nil {
		t.Fatalf("creator rejoin at capacity: %v", err)
	}
}

func TestRoomRepositoryAdmitMissingRoom(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewRoomRepository(store, 10*time.Minute, time.Second, testTracer())

	if _, err := repo.Admit(context.Background(), "ghost", ""); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("Admit(ghost) = %v; want ErrRoomNotFound", err)
	}

	// The lock must not linger after a failed admission.
	if mr.Exists("meta:ghost:lock") {
		t.Fatalf("admission lock left behind")
	}
}

func TestRoomRepositoryAdmitBusy(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewRoomRepository(store, 10*time.Minute, time.Second, testTracer())
	ctx := context.Background()

	room, _, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Simulate another caller mid-admission.
	if err := mr.Set("meta:"+room.ID+":lock", "1"); err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	if _, err := repo.Admit(ctx, room.ID, ""); !errors.Is(err, domain.ErrRoomBusy) {
		t.Fatalf("Admit under held lock = %v; want ErrRoomBusy", err)
	}
}

// Concurrent first-time visitors must never overfill a room: the lock
// serializes the check-then-append, so exactly one of them wins the free
// seat no matter the interleaving.
func TestRoomRepositoryAdmitConcurrent(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewRoomRepository(store, 10*time.Minute, time.Second, testTracer())
	ctx := context.Background()

	room, _, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const visitors = 8

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted []string
		full     int
	)

	for i := 0; i < visitors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				token, err := repo.Admit(ctx, room.ID, "")
				if errors.Is(err, domain.ErrRoomBusy) {
					time.Sleep(time.Millisecond)
					continue
				}

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					admitted = append(admitted, token)
				case errors.Is(err, domain.ErrRoomFull):
					full++
				default:
					t.Errorf("unexpected admit error: %v", err)
				}
				return
			}
		}()
	}

	wg.Wait()

	if len(admitted) != 1 {
		t.Fatalf("%d visitors won the free seat; want exactly 1 (tokens: %v)", len(admitted), admitted)
	}
	if full != visitors-1 {
		t.Fatalf("%d visitors saw ErrRoomFull; want %d", full, visitors-1)
	}

	loaded, err := repo.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(loaded.Connected) != domain.MaxParticipants {
		t.Fatalf("connected = %v; want %d seats", loaded.Connected, domain.MaxParticipants)
	}
}

func TestRoomRepositoryTTL(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewRoomRepository(store, 10*time.Minute, time.Second, testTracer())
	ctx := context.Background()

	room, _, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ttl, err := repo.TTL(ctx, room.ID)
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > 10*time.Minute {
		t.Fatalf("ttl = %v; want within (0, 10m]", ttl)
	}

	// Unknown rooms report zero, never a negative duration.
	ttl, err = repo.TTL(ctx, "ghost")
	if err != nil {
		t.Fatalf("TTL(ghost): %v", err)
	}
	if ttl != 0 {
		t.Fatalf("TTL(ghost) = %v; want 0", ttl)
	}

	// An expired room behaves like a missing one.
	mr.FastForward(11 * time.Minute)
	ttl, err = repo.TTL(ctx, room.ID)
	if err != nil {
		t.Fatalf("TTL after expiry: %v", err)
	}
	if ttl != 0 {
		t.Fatalf("TTL after expiry = %v; want 0", ttl)
	}
}

func TestRoomRepositoryDestroy(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewRoomRepository(store, 10*time.Minute, time.Second, testTracer())
	msgRepo := NewMessageRepository(store, testTracer())
	ctx := context.Background()

	room, token, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	msg, err := domain.NewMessage(room.ID, "someone", "hello", token)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if err := msgRepo.Append(ctx, room.ID, msg); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := repo.Destroy(ctx, room.ID); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if mr.Exists("meta:" + room.ID) {
		t.Fatalf("room record survived destroy")
	}
	if mr.Exists("messages:" + room.ID) {
		t.Fatalf("message log survived destroy")
	}

	if _, err := repo.GetByID(ctx, room.ID); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("GetByID after destroy = %v; want ErrRoomNotFound", err)
	}

	// Destroying twice is harmless.
	if err := repo.Destroy(ctx, room.ID); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
}
