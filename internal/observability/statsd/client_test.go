package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  logmailer.prod  ": "logmailer.prod",
		"..foo..":            "foo",
		".":                  "",
		"":                   "",
	}
	for input, want := range tests {
		assert.Equal(t, want, sanitizePrefix(input), "input %q", input)
	}
}

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" harvest/run ":  "harvest_run",
		"mail..sent":     "mail.sent",
		"multi  space":   "multi__space",
		"bad:name|chars": "bad_name_chars",
	}
	for input, want := range tests {
		assert.Equal(t, want, normalizeMetricName(input), "input %q", input)
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{
		"env": "prod",
		//nolint:gocritic // whitespace is part of the test case
		" service ": " logmailer ",
	}
	local := map[string]string{
		"result": " success ",
		"":       "ignored",
		"env":    "stage",
	}

	assert.Equal(t, "|#env:stage,result:success,service:logmailer", formatTags(global, local))
	assert.Empty(t, formatTags(nil, nil))
}

func TestJoinName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "logmailer.harvest.run", joinName("logmailer", "harvest.run"))
	assert.Equal(t, "harvest.run", joinName("", "harvest.run"))
	assert.Empty(t, joinName("logmailer", ""))
}

func TestClientWritesDatagrams(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    pc.LocalAddr().String(),
		Prefix:     "logmailer",
		GlobalTags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	defer client.Close()
	require.True(t, client.Enabled())

	client.Count("harvest.mail", 2, map[string]string{"result": "sent"})

	buf := make([]byte, 512)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "logmailer.harvest.mail:2|c|#env:test,result:sent", string(buf[:n]))
}

func TestClientCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{conn: clientConn}
	require.True(t, client.Enabled())
	require.NoError(t, client.Close())
	assert.False(t, client.Enabled())
	require.NoError(t, client.Close())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
	require.NoError(t, nilClient.Close())
	nilClient.Count("ignored", 1, nil)
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Enabled: true, Address: "   "})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statsd dial")
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.Count("harvest.mail", 1, map[string]string{"result": "sent"})
	r.Count("harvest.mail", 2, map[string]string{"result": "failed"})
	r.Timing("harvest.duration", 1500*time.Millisecond, nil)

	assert.Equal(t, int64(3), r.Total("harvest.mail"))
	samples := r.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, "ms", samples[2].Kind)
	assert.InDelta(t, 1500.0, samples[2].Value, 0.001)
}
