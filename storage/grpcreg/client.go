package grpcreg

import (
	"context"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/deepcare/ble-data-transfer-go/cidutil"
	"github.com/deepcare/ble-data-transfer-go/schemaset"
	"github.com/deepcare/ble-data-transfer-go/storage"
)

// Client implements storage.BlobStore over the SchemaRegistry gRPC service.
// Both Put and Get re-verify CIDs locally, so a misbehaving registry cannot
// hand back bytes that do not match the pin.
type Client struct {
	cc     *grpc.ClientConn
	client RegistryClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ storage.BlobStore = (*Client)(nil)

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewRegistryClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Put(data []byte) (cid.Cid, error) {
	if c == nil || c.client == nil {
		return cid.Undef, storage.ErrNotFound
	}
	expected, err := cidutil.Sum(data)
	if err != nil {
		return cid.Undef, err
	}

	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Put(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return cid.Undef, mapRPC(err)
	}
	id, err := cid.Decode(reply.GetValue())
	if err != nil || !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}
	if !id.Equals(expected) {
		return cid.Undef, storage.ErrCIDMismatch
	}
	return id, nil
}

func (c *Client) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Get(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return nil, mapRPC(err)
	}
	b := reply.GetValue()
	if !cidutil.Matches(b, id) {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (c *Client) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Has(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return false
	}
	return reply.GetValue()
}

// Missing reports which of the lock's pinned CIDs the registry does not
// hold, in one RPC. CIDs in the reply are checked against the lock; a
// registry cannot claim something is missing that was never pinned.
func (c *Client) Missing(lock *schemaset.Lock) ([]cid.Cid, error) {
	if c == nil || c.client == nil {
		return nil, storage.ErrNotFound
	}
	enc, err := schemaset.EncodeLock(lock)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Missing(ctx, wrapperspb.Bytes(enc))
	if err != nil {
		return nil, mapRPC(err)
	}
	body := reply.GetValue()
	if body == "" {
		return nil, nil
	}

	pinned := map[string]cid.Cid{}
	for _, f := range lock.Files {
		pinned[f.CID.String()] = f.CID
	}
	var missing []cid.Cid
	for _, s := range strings.Split(body, "\n") {
		id, ok := pinned[s]
		if !ok {
			return nil, storage.ErrInvalidCID
		}
		missing = append(missing, id)
	}
	return missing, nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
