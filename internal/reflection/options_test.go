package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	assert.Equal(t, []string{"type", "name"}, opts.TypeKeys)
	assert.Equal(t, MissingTypeStrict, opts.MissingType)
	assert.Equal(t, OrderFirstSeen, opts.ColumnOrder)
	assert.True(t, opts.Attributes)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{name: "shape", mutate: func(o *Options) { o.Shape = "tree" }, wantErr: "shape must be auto, flat or export"},
		{name: "missing type", mutate: func(o *Options) { o.MissingType = "ignore" }, wantErr: "missing_type must be strict or skip"},
		{name: "nested", mutate: func(o *Options) { o.Nested = "yaml" }, wantErr: "nested must be json or flatten"},
		{name: "column order", mutate: func(o *Options) { o.ColumnOrder = "random" }, wantErr: "column_order must be first_seen or alphabetical"},
		{name: "epoch", mutate: func(o *Options) { o.DateEpoch = "mayan" }, wantErr: "date_epoch must be unix or reference"},
		{name: "no type keys", mutate: func(o *Options) { o.TypeKeys = nil }, wantErr: "at least one type key is required"},
		{name: "empty type key", mutate: func(o *Options) { o.TypeKeys = []string{"type", ""} }, wantErr: "type key 1 is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
