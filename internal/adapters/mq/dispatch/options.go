// Package dispatch fans frames out to a sharded worker pool.
package dispatch

type poolConfig struct {
	shardCount    int
	shardCapacity int
}

// Option applies a configuration option to the dispatcher pool.
type Option func(*poolConfig)

// WithShardCount sets the number of shards (and workers) in the pool.
func WithShardCount(count int) Option {
	return func(c *poolConfig) {
		if count > 0 {
			c.shardCount = count
		}
	}
}

// WithShardCapacity sets the per-shard queue capacity.
func WithShardCapacity(capacity int) Option {
	return func(c *poolConfig) {
		if capacity > 0 {
			c.shardCapacity = capacity
		}
	}
}
