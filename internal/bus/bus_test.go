// internal/bus/bus_test.go
package bus

import (
	"net"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}
	t.Cleanup(srv.Shutdown)
	return srv
}

func configFor(t *testing.T, srv *server.Server) Config {
	t.Helper()
	addr, ok := srv.Addr().(*net.TCPAddr)
	require.True(t, ok, "expected TCP address from embedded NATS server")
	return Config{
		Host:          "127.0.0.1",
		Port:          addr.Port,
		Name:          "cncpoller-test",
		Timeout:       time.Second,
		ReconnectWait: 50 * time.Millisecond,
	}
}

func TestConfigURL(t *testing.T) {
	assert.Equal(t, "nats://localhost:4222", Config{Host: "localhost", Port: 4222}.URL())
	assert.Equal(t, "nats://[::1]:4222", Config{Host: "::1", Port: 4222}.URL())
}

func TestPublishCarriesMessageID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	srv := runServer(t)
	cfg := configFor(t, srv)

	c, err := Connect(cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	defer c.Close()
	assert.True(t, c.Connected())

	sub, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	ch := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("cnc.data", ch)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	require.NoError(t, c.Publish("cnc.data", []byte(`{"id":null}`), "abc-1"))

	select {
	case m := <-ch:
		assert.Equal(t, `{"id":null}`, string(m.Data))
		assert.Equal(t, "abc-1", m.Header.Get(nats.MsgIdHdr))
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestDisconnectFlipsState(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	srv := runServer(t)
	c, err := Connect(configFor(t, srv), zerolog.Nop(), nil)
	require.NoError(t, err)
	defer c.Close()

	srv.Shutdown()

	require.Eventually(t, func() bool { return !c.Connected() },
		5*time.Second, 20*time.Millisecond, "disconnect not observed")

	// no reconnect buffer: publish fails instead of queueing
	assert.Error(t, c.Publish("cnc.data", []byte("{}"), ""))
}

func TestConnectFailureIsReturned(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	_, err = Connect(Config{Host: "127.0.0.1", Port: port, Timeout: 200 * time.Millisecond}, zerolog.Nop(), nil)
	assert.Error(t, err)
}

type fakeLink struct{ up bool }

func (f fakeLink) IsConnected() bool    { return f.up }
func (f fakeLink) ConnectedUrl() string { return "nats://127.0.0.1:4222" }

func TestSyncStateFollowsLink(t *testing.T) {
	c := &Conn{log: zerolog.Nop()}

	// link already dropped by the time Connect returned
	c.syncState(fakeLink{up: false})
	assert.False(t, c.Connected())

	c.syncState(fakeLink{up: true})
	assert.True(t, c.Connected())

	// the async connect callback arriving late is harmless
	c.onConnected("nats://127.0.0.1:4222")
	assert.True(t, c.Connected())

	c.onDisconnected(nats.ErrConnectionClosed)
	c.syncState(fakeLink{up: false})
	assert.False(t, c.Connected())
}
