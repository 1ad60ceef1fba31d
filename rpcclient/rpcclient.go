// Package rpcclient implements a vm.Store that forwards every operation
// to a remote host over JSON-over-HTTP, plus a Watch subscription built
// on gorilla/websocket for key-invalidation notifications. It is the
// thin "off-chain RPC client" component named alongside the engine: the
// core never imports it, it only ever talks to the core through
// vm.Store.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/vm"
)

// Client is a vm.Store backed by a remote store host.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New returns a Client that issues requests against baseURL (e.g.
// "http://localhost:8080"). When httpClient is nil, an http.Client with
// a 10-second timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, hc: httpClient}
}

var _ vm.Store = (*Client)(nil)

type labelsWire struct {
	Values [][16]byte `json:"values"`
}

type scalarWire struct {
	Hi uint64 `json:"hi"`
	Lo uint64 `json:"lo"`
}

func labelsToWire(l vm.Labels) labelsWire {
	out := make([][16]byte, l.Len())
	for i := 0; i < l.Len(); i++ {
		out[i] = l.At(i).Bytes()
	}
	return labelsWire{Values: out}
}

func labelsFromWire(w labelsWire) vm.Labels {
	ls := make([]vm.Label, len(w.Values))
	for i, b := range w.Values {
		ls[i] = vm.LabelFromSlice(b[:])
	}
	return vm.NewLabels(ls)
}

func vectorToWire(v vm.Vector) []scalarWire {
	out := make([]scalarWire, v.Len())
	for i := 0; i < v.Len(); i++ {
		hi, lo := v.At(i).Raw128()
		out[i] = scalarWire{Hi: hi, Lo: lo}
	}
	return out
}

func vectorFromWire(w []scalarWire) vm.Vector {
	vals := make([]amount.Amount, len(w))
	for i, s := range w {
		vals[i] = amount.FromRaw128(s.Hi, s.Lo)
	}
	return vm.NewVector(vals)
}

func (c *Client) do(path string, key vm.Label, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "rpcclient: marshal request")
	}
	u := c.baseURL + path + "?key=" + url.QueryEscape(keyHex(key))
	resp, err := c.hc.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "rpcclient: request")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(vm.ErrNotFound, "rpcclient: key %s", keyHex(key))
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("rpcclient: remote status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "rpcclient: decode response")
	}
	return nil
}

func keyHex(key vm.Label) string {
	b := key.Bytes()
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 32)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}

// LoadLabels implements vm.Store.
func (c *Client) LoadLabels(key vm.Label) (vm.Labels, error) {
	var w labelsWire
	if err := c.do("/labels/get", key, struct{}{}, &w); err != nil {
		return vm.Labels{}, err
	}
	return labelsFromWire(w), nil
}

// LoadVector implements vm.Store.
func (c *Client) LoadVector(key vm.Label) (vm.Vector, error) {
	var w []scalarWire
	if err := c.do("/vector/get", key, struct{}{}, &w); err != nil {
		return vm.Vector{}, err
	}
	return vectorFromWire(w), nil
}

// LoadScalar implements vm.Store.
func (c *Client) LoadScalar(key vm.Label) (amount.Amount, error) {
	var w scalarWire
	if err := c.do("/scalar/get", key, struct{}{}, &w); err != nil {
		if errors.Cause(err) == vm.ErrNotFound {
			return amount.Zero, nil
		}
		return amount.Amount{}, err
	}
	return amount.FromRaw128(w.Hi, w.Lo), nil
}

// StoreLabels implements vm.Store.
func (c *Client) StoreLabels(key vm.Label, v vm.Labels) error {
	return c.do("/labels/put", key, labelsToWire(v), nil)
}

// StoreVector implements vm.Store.
func (c *Client) StoreVector(key vm.Label, v vm.Vector) error {
	return c.do("/vector/put", key, vectorToWire(v), nil)
}

// StoreScalar implements vm.Store.
func (c *Client) StoreScalar(key vm.Label, v amount.Amount) error {
	hi, lo := v.Raw128()
	return c.do("/scalar/put", key, scalarWire{Hi: hi, Lo: lo}, nil)
}

// Invalidation is one key-invalidation notification delivered by Watch.
type Invalidation struct {
	Key  vm.Label
	Kind string // "labels", "vector", or "scalar"
}

// Watch opens a websocket subscription to the remote host and streams
// key-invalidation notifications until ctx is canceled or the
// connection drops. wsURL uses the ws:// or wss:// scheme.
//
// This lets a caller holding a stale in-process copy of a Vector/Labels/
// Amount know when a sibling invocation has mutated the key under it
// and a reload through Load* is required (§5, "ordering" is per-call;
// cross-call freshness is the caller's problem, which this notification
// stream exists to solve).
func (c *Client) Watch(ctx context.Context, wsURL string) (<-chan Invalidation, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "rpcclient: dial watch stream")
	}

	out := make(chan Invalidation)
	go func() {
		defer close(out)
		defer conn.Close()
		go func() {
			<-ctx.Done()
			conn.Close()
		}()
		for {
			var msg struct {
				Key  [16]byte `json:"key"`
				Kind string   `json:"kind"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case out <- Invalidation{Key: vm.LabelFromSlice(msg.Key[:]), Kind: msg.Kind}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
