package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerraformEvent_JSONOmitsAbsentFields(t *testing.T) {
	event := TerraformEvent{
		Command:      CommandApply,
		Source:       "Initializing provider plugins...",
		SourceStream: Stdout,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"command":"apply","source":"Initializing provider plugins...","source_stream":1}`, string(data))
}

func TestTerraformEvent_JSONEncodesEnumsByName(t *testing.T) {
	event := TerraformEvent{
		Change:       []ResourceChange{ChangeDestroy, ChangeCreate},
		Status:       StatusPlanned,
		ResourcePath: "aws_instance.web",
		Command:      CommandPlan,
		Source:       "  # aws_instance.web must be replaced",
		SourceStream: Stdout,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"change": ["Destroy", "Create"],
		"status": "Planned",
		"resource_path": "aws_instance.web",
		"command": "plan",
		"source": "  # aws_instance.web must be replaced",
		"source_stream": 1
	}`, string(data))

	var decoded TerraformEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event, decoded)
}

func TestTerraformEvent_JSONKeepsZeroCounts(t *testing.T) {
	event := TerraformEvent{
		Status:       StatusCompleted,
		CreateCount:  Count(2),
		UpdateCount:  Count(1),
		DeleteCount:  Count(0),
		Command:      CommandApply,
		SourceStream: Stdout,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"delete_count":0`)
	assert.Equal(t, uint32(3), event.TotalChanges())
}

func TestResourceStatus_UnknownName(t *testing.T) {
	var s ResourceStatus
	require.Error(t, s.UnmarshalText([]byte("Exploded")))

	var c ResourceChange
	require.Error(t, c.UnmarshalText([]byte("Replace")))
}

func TestMultiSink_SkipsNilAndPreservesOrder(t *testing.T) {
	var got []string
	first := SinkFunc(func(e TerraformEvent) { got = append(got, "first:"+e.Source) })
	second := SinkFunc(func(e TerraformEvent) { got = append(got, "second:"+e.Source) })

	sink := NewMultiSink(first, nil, second)
	sink.Emit(TerraformEvent{Source: "a"})
	sink.Emit(TerraformEvent{Source: "b"})

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, got)
}

func TestChannelSink_Emit(t *testing.T) {
	ch := make(chan TerraformEvent, 1)
	ChannelSink(ch).Emit(TerraformEvent{Source: "line"})

	assert.Equal(t, "line", (<-ch).Source)
}
