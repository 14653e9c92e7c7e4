package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDevice(t *testing.T) {
	svc, _, _ := newTestService(t)

	d, err := svc.RegisterDevice(context.Background(), testSecret)
	require.NoError(t, err)
	assert.Len(t, d.PairingCode, 6)
	assert.Regexp(t, `^Display\d{4}$`, d.Name)
	assert.False(t, d.Paired())
	assert.Nil(t, d.CurrentLayoutID)
}

func TestRegisterDevice_WrongSecret(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, secret := range []string{"", "nope", testSecret + "x"} {
		_, err := svc.RegisterDevice(context.Background(), secret)
		assert.ErrorIs(t, err, ErrInvalidDeviceSecret, "secret %q", secret)
	}
}

func TestRegisterDevice_NoSecretConfigured(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(ServiceDeps{Repository: NewSQLiteRepository(db)})

	_, err := svc.RegisterDevice(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidDeviceSecret)
}

func TestRegisterDevice_RetriesOnCollision(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	codes := []string{"700000", "700000", "700000", "700001"}
	calls := 0
	svc.newCode = func() (string, error) {
		c := codes[calls]
		calls++
		return c, nil
	}

	first, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "700000", first.PairingCode)

	second, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "700001", second.PairingCode)
	assert.Equal(t, 4, calls)
}

func TestRegisterDevice_Exhausted(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.newCode = func() (string, error) { return "800000", nil }

	_, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)

	_, err = svc.RegisterDevice(ctx, testSecret)
	assert.ErrorIs(t, err, ErrPairingCodeExhausted)
}

func TestRegisterDevice_GeneratorFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	entropy := errors.New("entropy unavailable")
	svc.newCode = func() (string, error) { return "", entropy }

	_, err := svc.RegisterDevice(context.Background(), testSecret)
	assert.ErrorIs(t, err, entropy)
}

func TestPair(t *testing.T) {
	svc, db, notifier := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "usr-alice")

	d, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)

	res, err := svc.Pair(ctx, alice, d.PairingCode)
	require.NoError(t, err)
	require.NotNil(t, res.Device.UserID)
	assert.Equal(t, alice, *res.Device.UserID)
	assert.Empty(t, res.PreviousOwnerID)
	assert.Equal(t, d.PairingCode, res.Device.PairingCode, "pairing code is stable")

	assert.Equal(t, []notification{{deviceID: d.ID, paired: true}}, notifier.all())

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)
}

func TestPair_Errors(t *testing.T) {
	svc, db, notifier := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "usr-alice")

	_, err := svc.Pair(ctx, alice, "")
	assert.ErrorIs(t, err, ErrPairingCodeRequired)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Pair(ctx, alice, "999999")
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	assert.Empty(t, notifier.all())
}

func TestPair_TransfersOwnership(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "usr-alice")
	bob := seedUser(t, db, "usr-bob")

	d, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)
	_, err = svc.Pair(ctx, alice, d.PairingCode)
	require.NoError(t, err)

	res, err := svc.Pair(ctx, bob, d.PairingCode)
	require.NoError(t, err)
	assert.Equal(t, alice, res.PreviousOwnerID)
	assert.Equal(t, bob, *res.Device.UserID)

	_, err = svc.Get(ctx, alice, d.ID)
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	got, err := svc.Get(ctx, bob, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestPair_SameOwnerIsIdempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "usr-alice")

	d, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)

	for range 2 {
		res, err := svc.Pair(ctx, alice, d.PairingCode)
		require.NoError(t, err)
		assert.Equal(t, alice, *res.Device.UserID)
	}

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDisconnect(t *testing.T) {
	svc, db, notifier := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "usr-alice")
	bob := seedUser(t, db, "usr-bob")

	d, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)
	_, err = svc.Pair(ctx, alice, d.PairingCode)
	require.NoError(t, err)

	_, err = svc.Disconnect(ctx, bob, d.ID)
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	out, err := svc.Disconnect(ctx, alice, d.ID)
	require.NoError(t, err)
	assert.False(t, out.Paired())

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)

	// The display can be paired again with the same code.
	_, err = svc.Pair(ctx, bob, d.PairingCode)
	require.NoError(t, err)

	assert.Equal(t, []notification{
		{deviceID: d.ID, paired: true},
		{deviceID: d.ID, paired: false},
		{deviceID: d.ID, paired: true},
	}, notifier.all())
}

func TestUpdate(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "usr-alice")

	d, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)
	_, err = svc.Pair(ctx, alice, d.PairingCode)
	require.NoError(t, err)

	got, err := svc.Update(ctx, alice, d.ID, Patch{Name: strPtr("  Foyer  ")})
	require.NoError(t, err)
	assert.Equal(t, "Foyer", got.Name)

	got, err = svc.Update(ctx, alice, d.ID, Patch{SetLayout: true, CurrentLayoutID: strPtr("42")})
	require.NoError(t, err)
	require.NotNil(t, got.CurrentLayoutID)
	assert.Equal(t, "42", *got.CurrentLayoutID)

	got, err = svc.Update(ctx, alice, d.ID, Patch{SetLayout: true})
	require.NoError(t, err)
	assert.Nil(t, got.CurrentLayoutID)

	_, err = svc.Update(ctx, alice, d.ID, Patch{Name: strPtr(" ")})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Update(ctx, "usr-other", d.ID, Patch{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestNotifierFailureDoesNotFailPairing(t *testing.T) {
	svc, db, notifier := newTestService(t)
	notifier.err = errNotifyFailed
	ctx := context.Background()
	alice := seedUser(t, db, "usr-alice")

	d, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)

	_, err = svc.Pair(ctx, alice, d.PairingCode)
	require.NoError(t, err)
	_, err = svc.Disconnect(ctx, alice, d.ID)
	require.NoError(t, err)

	assert.Len(t, notifier.all(), 2)
}

func TestPair_ConcurrentClaims(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.RegisterDevice(ctx, testSecret)
	require.NoError(t, err)

	const users = 8
	errs := make(chan error, users)
	for i := range users {
		id := seedUser(t, db, fmt.Sprintf("usr-%d", i))
		go func() {
			_, err := svc.Pair(ctx, id, d.PairingCode)
			errs <- err
		}()
	}
	for range users {
		require.NoError(t, <-errs)
	}

	// Exactly one user ends up owning the display.
	owners := 0
	for i := range users {
		list, err := svc.List(ctx, fmt.Sprintf("usr-%d", i))
		require.NoError(t, err)
		owners += len(list)
	}
	assert.Equal(t, 1, owners)
}

func TestRegisterDevice_Concurrent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	const workers = 64
	var wg sync.WaitGroup
	devices := make(chan *Device, workers)
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := svc.RegisterDevice(ctx, testSecret)
			if err != nil {
				errs <- err
				return
			}
			devices <- d
		}()
	}
	wg.Wait()
	close(devices)
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	codes := make(map[string]bool, workers)
	ids := make(map[string]bool, workers)
	for d := range devices {
		assert.False(t, codes[d.PairingCode], "pairing code %s issued twice", d.PairingCode)
		assert.False(t, ids[d.ID], "device id %s issued twice", d.ID)
		codes[d.PairingCode] = true
		ids[d.ID] = true
	}
	assert.Len(t, codes, workers)
}
