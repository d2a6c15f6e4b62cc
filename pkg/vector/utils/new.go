// Package vectorutils is the vector index utility package
package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hearthchat/hearth/pkg/vector"
	"github.com/hearthchat/hearth/pkg/vector/brute"
	"github.com/hearthchat/hearth/pkg/vector/sqlitevec"
)

type NewIndexOpts struct {
	ProviderType string
	Target       string
	Dimensions   uint
	Logger       *zap.Logger
}

func NewIndex(o *NewIndexOpts) (vector.Index, error) {
	switch o.ProviderType {
	case "", "brute":
		return brute.NewIndex(), nil
	case "sqlite":
		return sqlitevec.NewIndex(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector index provider: %s", o.ProviderType)
	}
}
