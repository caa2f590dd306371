package goredis

import (
	"context"

	"github.com/wegjgwioj/goredis/command"
	"github.com/wegjgwioj/goredis/rediserr"
	"github.com/wegjgwioj/goredis/resp"
)

// pong decodes PING's "+PONG" reply.
func pong(v resp.Value) (struct{}, error) {
	if v.Type == resp.TypeSimpleString && v.Str == "PONG" {
		return struct{}{}, nil
	}
	return struct{}{}, rediserr.NewProtocolError("expected +PONG, got %s", v.Type)
}

var pingCmd = command.New[struct{}, struct{}]([]string{"PING"}, func(struct{}) [][]byte { return nil }, pong)

// Ping round-trips a PING to confirm liveness.
func (c *Client) Ping(ctx context.Context) error {
	_, err := pingCmd.Run(ctx, c.Executor, struct{}{})
	return err
}

var getCmd = command.New[string, *string]([]string{"GET"}, command.String, command.OptionalReply(command.MultiString))

// Get returns the string value of key, or nil if it does not exist.
func (c *Client) Get(ctx context.Context, key string) (*string, error) {
	return getCmd.Run(ctx, c.Executor, key)
}

type setArgs struct{ key, value string }

func encodeSet(a setArgs) [][]byte {
	return [][]byte{[]byte(a.key), []byte(a.value)}
}

var setCmd = command.New[setArgs, struct{}]([]string{"SET"}, encodeSet, command.Unit)

// Set stores value under key, overwriting any existing value.
func (c *Client) Set(ctx context.Context, key, value string) error {
	_, err := setCmd.Run(ctx, c.Executor, setArgs{key: key, value: value})
	return err
}

var delCmd = command.New[[]string, int64]([]string{"DEL"}, command.Varargs(command.String), command.IntegerReply)

// Del removes keys, returning how many actually existed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	return delCmd.Run(ctx, c.Executor, keys)
}

var incrCmd = command.New[string, int64]([]string{"INCR"}, command.String, command.IntegerReply)

// Incr atomically increments key's integer value by one.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return incrCmd.Run(ctx, c.Executor, key)
}

type expireArgs struct {
	key     string
	seconds int64
}

func encodeExpire(a expireArgs) [][]byte {
	return append([][]byte{[]byte(a.key)}, command.Long(a.seconds)...)
}

var expireCmd = command.New[expireArgs, bool]([]string{"EXPIRE"}, encodeExpire, command.Bool)

// Expire sets key's TTL to seconds, returning whether key existed.
func (c *Client) Expire(ctx context.Context, key string, seconds int64) (bool, error) {
	return expireCmd.Run(ctx, c.Executor, expireArgs{key: key, seconds: seconds})
}

var ttlCmd = command.New[string, command.DurationReply]([]string{"TTL"}, command.String, command.Duration(command.DurationSecondsUnit))

// TTL reports key's remaining time to live in seconds.
func (c *Client) TTL(ctx context.Context, key string) (command.DurationReply, error) {
	return ttlCmd.Run(ctx, c.Executor, key)
}

type lpushArgs struct {
	key    string
	values []string
}

func encodeLPush(a lpushArgs) [][]byte {
	out := [][]byte{[]byte(a.key)}
	for _, v := range a.values {
		out = append(out, []byte(v))
	}
	return out
}

var lpushCmd = command.New[lpushArgs, int64]([]string{"LPUSH"}, encodeLPush, command.IntegerReply)

// LPush prepends values to the list at key, returning its new length.
func (c *Client) LPush(ctx context.Context, key string, values ...string) (int64, error) {
	return lpushCmd.Run(ctx, c.Executor, lpushArgs{key: key, values: values})
}

var mgetCmd = command.New[[]string, []*string]([]string{"MGET"}, command.Varargs(command.String), command.Chunk(command.OptionalReply(command.MultiString)))

// MGet returns the value of each key in keys, nil per key that does not exist.
func (c *Client) MGet(ctx context.Context, keys ...string) ([]*string, error) {
	return mgetCmd.Run(ctx, c.Executor, keys)
}

var askingCmd = command.New[struct{}, struct{}]([]string{"ASKING"}, func(struct{}) [][]byte { return nil }, command.Unit)

// Asking issues ASKING, flagging the next command on this connection as
// an ASK-redirected retry. Exposed for completeness; the cluster
// executor issues it itself as part of ASK redirect handling.
func (c *Client) Asking(ctx context.Context) error {
	_, err := askingCmd.Run(ctx, c.Executor, struct{}{})
	return err
}

var clusterSlotsCmd = command.New[struct{}, []command.ClusterPartition](
	[]string{"CLUSTER", "SLOTS"}, func(struct{}) [][]byte { return nil }, command.ClusterSlots)

// ClusterSlots issues CLUSTER SLOTS and returns the parsed partition list.
func (c *Client) ClusterSlots(ctx context.Context) ([]command.ClusterPartition, error) {
	return clusterSlotsCmd.Run(ctx, c.Executor, struct{}{})
}

type clusterSetSlotArgs struct {
	slot   int64
	state  string
	nodeID string
}

func encodeClusterSetSlot(a clusterSetSlotArgs) [][]byte {
	out := append([][]byte{}, command.Long(a.slot)...)
	out = append(out, []byte(a.state))
	if a.nodeID != "" {
		out = append(out, []byte(a.nodeID))
	}
	return out
}

var clusterSetSlotCmd = command.New[clusterSetSlotArgs, struct{}]([]string{"CLUSTER", "SETSLOT"}, encodeClusterSetSlot, command.Unit)

// ClusterSetSlot issues CLUSTER SETSLOT <slot> {MIGRATING|IMPORTING|STABLE|NODE} [nodeID].
func (c *Client) ClusterSetSlot(ctx context.Context, slot int64, state, nodeID string) error {
	_, err := clusterSetSlotCmd.Run(ctx, c.Executor, clusterSetSlotArgs{slot: slot, state: state, nodeID: nodeID})
	return err
}

type xaddArgs struct {
	key   string
	entry command.StreamEntryInput
}

func encodeXAdd(a xaddArgs) [][]byte {
	return append([][]byte{[]byte(a.key)}, a.entry.Encode()...)
}

var xaddCmd = command.New[xaddArgs, string]([]string{"XADD"}, encodeXAdd, command.MultiString)

// XAdd appends an entry to the stream at key (id "*" for an
// auto-generated one) and returns the entry's assigned ID.
func (c *Client) XAdd(ctx context.Context, key, id string, fields map[string]string) (string, error) {
	return xaddCmd.Run(ctx, c.Executor, xaddArgs{key: key, entry: command.StreamEntryInput{ID: id, Fields: fields}})
}

var xinfoStreamCmd = command.New[string, command.StreamInfo]([]string{"XINFO", "STREAM"}, command.String, command.XInfoStream)

// XInfoStream reports a stream's metadata, independent of the field
// order the server happens to send it in.
func (c *Client) XInfoStream(ctx context.Context, key string) (command.StreamInfo, error) {
	return xinfoStreamCmd.Run(ctx, c.Executor, key)
}

func encodeXInfoStreamFull(key string) [][]byte {
	return append([][]byte{[]byte(key)}, []byte("FULL"))
}

var xinfoStreamFullCmd = command.New[string, command.StreamInfoFull]([]string{"XINFO", "STREAM"}, encodeXInfoStreamFull, command.XInfoStreamFull)

// XInfoStreamFull reports a stream's full metadata: its raw entries and
// each consumer group's pending entries and consumers, rather than the
// first/last-entry-only summary XInfoStream gives.
func (c *Client) XInfoStreamFull(ctx context.Context, key string) (command.StreamInfoFull, error) {
	return xinfoStreamFullCmd.Run(ctx, c.Executor, key)
}

var xinfoGroupsCmd = command.New[string, []command.StreamGroup]([]string{"XINFO", "GROUPS"}, command.String, command.StreamGroupsInfo)

// XInfoGroups lists a stream's consumer groups.
func (c *Client) XInfoGroups(ctx context.Context, key string) ([]command.StreamGroup, error) {
	return xinfoGroupsCmd.Run(ctx, c.Executor, key)
}

type xinfoConsumersArgs struct{ key, group string }

func encodeXInfoConsumers(a xinfoConsumersArgs) [][]byte {
	return [][]byte{[]byte(a.key), []byte(a.group)}
}

var xinfoConsumersCmd = command.New[xinfoConsumersArgs, []command.StreamConsumer](
	[]string{"XINFO", "CONSUMERS"}, encodeXInfoConsumers, command.StreamConsumersInfo)

// XInfoConsumers lists a consumer group's consumers.
func (c *Client) XInfoConsumers(ctx context.Context, key, group string) ([]command.StreamConsumer, error) {
	return xinfoConsumersCmd.Run(ctx, c.Executor, xinfoConsumersArgs{key: key, group: group})
}

type xpendingArgs struct{ key, group string }

func encodeXPending(a xpendingArgs) [][]byte {
	return [][]byte{[]byte(a.key), []byte(a.group)}
}

var xpendingCmd = command.New[xpendingArgs, command.PendingSummary]([]string{"XPENDING"}, encodeXPending, command.XPending)

// XPending reports a consumer group's pending-entry summary: overall
// count, the lowest and highest pending IDs, and a per-consumer
// breakdown.
func (c *Client) XPending(ctx context.Context, key, group string) (command.PendingSummary, error) {
	return xpendingCmd.Run(ctx, c.Executor, xpendingArgs{key: key, group: group})
}

type xpendingRangeArgs struct {
	key, group, start, end string
	count                  int64
}

func encodeXPendingRange(a xpendingRangeArgs) [][]byte {
	out := [][]byte{[]byte(a.key), []byte(a.group), []byte(a.start), []byte(a.end)}
	return append(out, command.Long(a.count)...)
}

var xpendingRangeCmd = command.New[xpendingRangeArgs, []command.PendingMessage](
	[]string{"XPENDING"}, encodeXPendingRange, command.PendingMessages)

// XPendingRange reports the individual pending messages for a consumer
// group between start and end (use "-"/"+" for the full range),
// capped at count entries.
func (c *Client) XPendingRange(ctx context.Context, key, group, start, end string, count int64) ([]command.PendingMessage, error) {
	return xpendingRangeCmd.Run(ctx, c.Executor, xpendingRangeArgs{key: key, group: group, start: start, end: end, count: count})
}

type xautoClaimArgs struct {
	key, group, consumer string
	minIdleMillis        int64
	start                string
	count                *int64
}

func encodeXAutoClaim(a xautoClaimArgs) [][]byte {
	out := [][]byte{[]byte(a.key), []byte(a.group), []byte(a.consumer)}
	out = append(out, command.Long(a.minIdleMillis)...)
	out = append(out, []byte(a.start))
	if a.count != nil {
		out = append(out, command.Count(*a.count)...)
	}
	return out
}

var xautoClaimCmd = command.New[xautoClaimArgs, command.StreamClaimResult](
	[]string{"XAUTOCLAIM"}, encodeXAutoClaim, command.StreamClaimed)

// XAutoClaim transfers ownership of pending entries idle for at least
// minIdleMillis to consumer, starting from start ("0-0" for the
// beginning), optionally capped at count entries.
func (c *Client) XAutoClaim(ctx context.Context, key, group, consumer string, minIdleMillis int64, start string, count *int64) (command.StreamClaimResult, error) {
	return xautoClaimCmd.Run(ctx, c.Executor, xautoClaimArgs{
		key: key, group: group, consumer: consumer, minIdleMillis: minIdleMillis, start: start, count: count,
	})
}

var lcsCmd = command.New[[]string, command.LcsMatches](
	[]string{"LCS"}, command.Varargs(command.String), command.Lcs)

// Lcs reports the longest common subsequence of the strings at key1
// and key2, with its index ranges in each key and per-match lengths.
func (c *Client) Lcs(ctx context.Context, key1, key2 string) (command.LcsMatches, error) {
	return lcsCmd.Run(ctx, c.Executor, []string{key1, key2, "IDX", "WITHMATCHLEN"})
}

// GeoMember is one (longitude, latitude, member-name) entry for GeoAdd.
type GeoMember struct {
	Longitude, Latitude float64
	Member              string
}

type geoAddArgs struct {
	key     string
	members []GeoMember
}

func encodeGeoAdd(a geoAddArgs) [][]byte {
	out := [][]byte{[]byte(a.key)}
	for _, m := range a.members {
		out = append(out, command.LongLat{Longitude: m.Longitude, Latitude: m.Latitude}.Encode()...)
		out = append(out, []byte(m.Member))
	}
	return out
}

var geoAddCmd = command.New[geoAddArgs, int64]([]string{"GEOADD"}, encodeGeoAdd, command.IntegerReply)

// GeoAdd adds each member's position to the geospatial index at key,
// returning how many new elements were added.
func (c *Client) GeoAdd(ctx context.Context, key string, members ...GeoMember) (int64, error) {
	return geoAddCmd.Run(ctx, c.Executor, geoAddArgs{key: key, members: members})
}

type geoPosArgs struct {
	key     string
	members []string
}

func encodeGeoPos(a geoPosArgs) [][]byte {
	return append([][]byte{[]byte(a.key)}, command.Varargs(command.String)(a.members)...)
}

var geoPosCmd = command.New[geoPosArgs, []*command.GeoPosition]([]string{"GEOPOS"}, encodeGeoPos, command.Geo)

// GeoPos returns each member's (longitude, latitude), nil per member
// with no known position.
func (c *Client) GeoPos(ctx context.Context, key string, members ...string) ([]*command.GeoPosition, error) {
	return geoPosCmd.Run(ctx, c.Executor, geoPosArgs{key: key, members: members})
}

// GeoRadiusQuery configures a GeoRadius call. Count, Asc/Desc, Store,
// and StoreDist are all optional GEORADIUS query modifiers; leaving
// Count nil omits the COUNT option and leaving both Asc and Desc false
// omits the sort order option entirely.
type GeoRadiusQuery struct {
	Longitude, Latitude, Radius   float64
	Unit                          string
	WithCoord, WithDist, WithHash bool
	Count                         *int64
	Asc, Desc                     bool
	Store, StoreDist              string
}

type geoRadiusArgs struct {
	key   string
	query GeoRadiusQuery
}

func encodeGeoRadius(a geoRadiusArgs) [][]byte {
	q := a.query
	out := [][]byte{[]byte(a.key)}
	out = append(out, command.LongLat{Longitude: q.Longitude, Latitude: q.Latitude}.Encode()...)
	out = append(out, command.Double(q.Radius)...)
	out = append(out, []byte(q.Unit))
	out = append(out, command.WithCoord(q.WithCoord)...)
	out = append(out, command.WithDist(q.WithDist)...)
	out = append(out, command.WithHash(q.WithHash)...)
	if q.Count != nil {
		out = append(out, command.Count(*q.Count)...)
	}
	switch {
	case q.Asc:
		out = append(out, command.Asc(true)...)
	case q.Desc:
		out = append(out, command.Desc(true)...)
	}
	if q.Store != "" {
		out = append(out, command.Store(q.Store)...)
	}
	if q.StoreDist != "" {
		out = append(out, command.StoreDist(q.StoreDist)...)
	}
	return out
}

// GeoRadius queries members within radius (in Unit: "m", "km", "ft", or
// "mi") of (Longitude, Latitude), decoding the reply according to
// which WITH* options the query requested.
func (c *Client) GeoRadius(ctx context.Context, key string, query GeoRadiusQuery) ([]command.GeoRadiusResult, error) {
	cmd := command.New[geoRadiusArgs, []command.GeoRadiusResult](
		[]string{"GEORADIUS"}, encodeGeoRadius,
		command.GeoRadius(command.GeoRadiusOptions{WithCoord: query.WithCoord, WithDist: query.WithDist, WithHash: query.WithHash}),
	)
	return cmd.Run(ctx, c.Executor, geoRadiusArgs{key: key, query: query})
}

// SortOptions configures a Sort/SortStore call. A zero value sorts the
// whole collection numerically in ascending order.
type SortOptions struct {
	By    string
	Get   []string
	Limit *struct{ Offset, Count int64 }
	Alpha bool
	Desc  bool
}

func encodeSortOptions(o SortOptions) [][]byte {
	var out [][]byte
	if o.By != "" {
		out = append(out, command.By(o.By)...)
	}
	if o.Limit != nil {
		out = append(out, command.Limit(o.Limit.Offset, o.Limit.Count)...)
	}
	for _, pattern := range o.Get {
		out = append(out, command.Get(pattern)...)
	}
	if o.Desc {
		out = append(out, command.Desc(true)...)
	} else {
		out = append(out, command.Asc(true)...)
	}
	out = append(out, command.Alpha(o.Alpha)...)
	return out
}

type sortArgs struct {
	key  string
	opts SortOptions
}

func encodeSort(a sortArgs) [][]byte {
	return append([][]byte{[]byte(a.key)}, encodeSortOptions(a.opts)...)
}

var sortCmd = command.New[sortArgs, []string]([]string{"SORT"}, encodeSort, command.Chunk(command.MultiString))

// Sort sorts (or, with opts.By/Get, orders external keys by) the list,
// set, or sorted set at key, returning the ordered elements.
func (c *Client) Sort(ctx context.Context, key string, opts SortOptions) ([]string, error) {
	return sortCmd.Run(ctx, c.Executor, sortArgs{key: key, opts: opts})
}

type sortStoreArgs struct {
	key, dest string
	opts      SortOptions
}

func encodeSortStore(a sortStoreArgs) [][]byte {
	out := append([][]byte{[]byte(a.key)}, encodeSortOptions(a.opts)...)
	return append(out, command.Store(a.dest)...)
}

var sortStoreCmd = command.New[sortStoreArgs, int64]([]string{"SORT"}, encodeSortStore, command.IntegerReply)

// SortStore sorts the list, set, or sorted set at key (as Sort does)
// and stores the result as a list at dest, returning its length.
func (c *Client) SortStore(ctx context.Context, key, dest string, opts SortOptions) (int64, error) {
	return sortStoreCmd.Run(ctx, c.Executor, sortStoreArgs{key: key, dest: dest, opts: opts})
}

type zInterStoreArgs struct {
	dest      string
	keys      []string
	weights   []float64
	aggregate command.Aggregate
}

func encodeZInterStore(a zInterStoreArgs) [][]byte {
	out := [][]byte{[]byte(a.dest)}
	out = append(out, command.Long(int64(len(a.keys)))...)
	out = append(out, command.Varargs(command.String)(a.keys)...)
	out = append(out, command.Weights(a.weights)...)
	if a.aggregate != "" {
		out = append(out, a.aggregate.Encode()...)
	}
	return out
}

var zInterStoreCmd = command.New[zInterStoreArgs, int64]([]string{"ZINTERSTORE"}, encodeZInterStore, command.IntegerReply)

// ZInterStore computes the intersection of keys (weighted by weights,
// combined by aggregate) and stores it as a sorted set at dest,
// returning its cardinality.
func (c *Client) ZInterStore(ctx context.Context, dest string, keys []string, weights []float64, aggregate command.Aggregate) (int64, error) {
	return zInterStoreCmd.Run(ctx, c.Executor, zInterStoreArgs{dest: dest, keys: keys, weights: weights, aggregate: aggregate})
}

type scanArgs struct {
	cursor string
	match  string
	count  int64
}

func encodeScan(a scanArgs) [][]byte {
	out := [][]byte{[]byte(a.cursor)}
	if a.match != "" {
		out = append(out, command.Match(a.match)...)
	}
	if a.count > 0 {
		out = append(out, command.Count(a.count)...)
	}
	return out
}

var scanCmd = command.New[scanArgs, command.ScanReply[string]]([]string{"SCAN"}, encodeScan, command.Scan(command.MultiString))

// Scan iterates the keyspace one cursor step at a time; pass the
// returned ScanReply.Cursor back in on the next call, "0" to start.
// An empty match skips MATCH filtering; a non-positive count skips the
// COUNT hint.
func (c *Client) Scan(ctx context.Context, cursor, match string, count int64) (command.ScanReply[string], error) {
	return scanCmd.Run(ctx, c.Executor, scanArgs{cursor: cursor, match: match, count: count})
}

type restoreArgs struct {
	key        string
	ttlMillis  int64
	payload    []byte
	replace    bool
	absTTL     bool
	idleTime   *int64
	freq       *int64
}

func encodeRestore(a restoreArgs) [][]byte {
	out := [][]byte{[]byte(a.key)}
	out = append(out, command.Long(a.ttlMillis)...)
	out = append(out, a.payload)
	out = append(out, command.Replace(a.replace)...)
	out = append(out, command.AbsTTL(a.absTTL)...)
	if a.idleTime != nil {
		out = append(out, command.IdleTime(*a.idleTime)...)
	}
	if a.freq != nil {
		out = append(out, command.Freq(*a.freq)...)
	}
	return out
}

var restoreCmd = command.New[restoreArgs, struct{}]([]string{"RESTORE"}, encodeRestore, command.Unit)

// RestoreOptions configures a Restore call's replace/expiry-interpretation
// and eviction-policy hints.
type RestoreOptions struct {
	Replace  bool
	AbsTTL   bool
	IdleTime *int64
	Freq     *int64
}

// Restore recreates a key from payload, the serialized form a prior
// DUMP produced, expiring after ttlMillis (0 for no expiry, or an
// absolute Unix-millis instant when opts.AbsTTL is set).
func (c *Client) Restore(ctx context.Context, key string, ttlMillis int64, payload []byte, opts RestoreOptions) error {
	_, err := restoreCmd.Run(ctx, c.Executor, restoreArgs{
		key: key, ttlMillis: ttlMillis, payload: payload,
		replace: opts.Replace, absTTL: opts.AbsTTL, idleTime: opts.IdleTime, freq: opts.Freq,
	})
	return err
}

type pubSubNumSubArgs struct{ channels []string }

func encodePubSubNumSub(a pubSubNumSubArgs) [][]byte {
	return command.Varargs(command.String)(a.channels)
}

var pubSubNumSubCmd = command.New[pubSubNumSubArgs, []command.NumSub](
	[]string{"PUBSUB", "NUMSUB"}, encodePubSubNumSub, command.NumSubResponse)

// PubSubNumSub reports the current subscriber count of each channel.
func (c *Client) PubSubNumSub(ctx context.Context, channels ...string) ([]command.NumSub, error) {
	return pubSubNumSubCmd.Run(ctx, c.Executor, pubSubNumSubArgs{channels: channels})
}
