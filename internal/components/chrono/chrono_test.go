package chrono

import (
	"iserv-client/internal/components/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	impl, err := NewStandardImpl("")
	require.NoError(t, err)
	require.Equal(t, DefaultLocation, impl.Location().String())
	require.Equal(t, impl.Location(), impl.Now().Location())

	_, err = NewStandardImpl("Not/AZone")
	require.Error(t, err)
}

func TestCronScheduler(t *testing.T) {
	rec := telemetry.NewRecorder()
	scheduler := NewCronScheduler(time.UTC, rec)
	defer scheduler.Stop()

	require.Error(t, scheduler.Add("not a schedule", func() {}))

	ran := make(chan struct{}, 1)
	require.NoError(t, scheduler.Add("@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestSchedulePairs(t *testing.T) {
	require.Equal(t, []any{"entry=1", "next=soon"}, pairs([]any{"entry", 1, "next", "soon", "dangling"}))
	require.Empty(t, pairs(nil))
}
