package task

import "encoding/json"

// Stream message fields carrying a task.
const (
	FieldType = "task_type"
	FieldData = "task_data"
)

type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// DefaultTaskValue provides a common implementation for TaskValue
func DefaultTaskValue(task interface{}) ([]byte, error) {
	return json.Marshal(task)
}

func UnmarshalTask[T Task](data []byte) (T, error) {
	var t T
	err := json.Unmarshal(data, &t)
	return t, err
}

// Values is the stream message payload for t.
func Values(t Task) (map[string]interface{}, error) {
	data, err := t.TaskValue()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		FieldType: t.TaskType(),
		FieldData: string(data),
	}, nil
}

// FromValues splits a stream message payload back into type and data.
// ok is false when either field is missing or not a string.
func FromValues(values map[string]interface{}) (taskType string, data []byte, ok bool) {
	taskType, typeOK := values[FieldType].(string)
	raw, dataOK := values[FieldData].(string)
	return taskType, []byte(raw), typeOK && dataOK
}
