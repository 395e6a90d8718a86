package contributions

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/keys"
	"github.com/0097eo/chama-web/internal/model"
)

// Bubble Tea copies the model on every Update; huh writes typed values
// through pointers captured when the form was built. The submit path
// must read those same heap bindings from whichever copy is current.
func TestRecordSubmissionReadsTypedValues(t *testing.T) {
	var got atomic.Pointer[api.RecordContributionRequest]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.RecordContributionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got.Store(&req)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := New(api.NewClient(srv.URL, "tok", 5*time.Second), keys.DefaultKeyMap(), 80, 24)
	m.membership = model.Membership{ID: "mb-1"}
	m.form = m.buildRecordForm()

	runtime := m
	m.fb.amount = "1500"
	m.fb.month = "3"
	m.fb.year = "2026"
	m.fb.method = "MPESA"

	_, cmd := runtime.submitRecord()
	require.NotNil(t, cmd)
	msg := cmd()

	done, ok := msg.(actionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	req := got.Load()
	require.NotNil(t, req)
	assert.Equal(t, "mb-1", req.MembershipID)
	assert.Equal(t, 1500.0, req.Amount)
	assert.Equal(t, 3, req.Month)
	assert.Equal(t, 2026, req.Year)
	assert.Equal(t, "MPESA", req.PaymentMethod)
}
