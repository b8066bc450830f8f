package memory

import (
	"testing"

	"github.com/unkn0wn-root/calcache/store"
	"github.com/unkn0wn-root/calcache/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
