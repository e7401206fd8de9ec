// Package agent holds the contract between this plugin and the blackbird
// host agent: the item shapes the agent's sender expects and the one
// collector interface the agent is allowed to depend on.
package agent

// Item is one key/value measurement handed to the agent's queue.
type Item struct {
	Host  string
	Key   string
	Value string
	Clock int64
}

// DiscoveryItem carries low-level discovery rows, each row a macro-to-value
// map (e.g. {"{#DB}": "db0"}).
type DiscoveryItem struct {
	Host  string
	Key   string
	Rows  []map[string]string
	Clock int64
}

// Queue is where a Job enqueues what it built; the host agent drains it
// into its reporting pipeline.
type Queue interface {
	Enqueue(Item)
	EnqueueDiscovery(DiscoveryItem)
}

// ChanQueue is a channel-backed Queue for agents (and tests) that drain
// items asynchronously.
type ChanQueue struct {
	Items       chan Item
	Discoveries chan DiscoveryItem
}

func NewChanQueue(size int) *ChanQueue {
	return &ChanQueue{
		Items:       make(chan Item, size),
		Discoveries: make(chan DiscoveryItem, size),
	}
}

func (q *ChanQueue) Enqueue(it Item) {
	q.Items <- it
}

func (q *ChanQueue) EnqueueDiscovery(it DiscoveryItem) {
	q.Discoveries <- it
}
