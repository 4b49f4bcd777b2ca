package ids

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog/log"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// New returns a time-ordered unique id.
func New() string {
	nodeOnce.Do(func() {
		var err error
		node, err = snowflake.NewNode(1)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create snowflake node")
		}
	})
	return node.Generate().String()
}

// Generator returns an id function bound to its own node, for processes that
// run more than one writer.
func Generator(nodeID int64) (func() string, error) {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return func() string { return n.Generate().String() }, nil
}
