package logger

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldService   = "service"
	FieldEndpoint  = "endpoint"
	FieldVerb      = "verb"
	FieldPath      = "path"
	FieldReason    = "reason"
	FieldError     = "error"
	FieldCount     = "count"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("endpoint", "list", "path", "/users"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// EndpointFields creates fields identifying an endpoint of a service.
func EndpointFields(service, endpoint string) map[string]interface{} {
	return map[string]interface{}{
		FieldService:  service,
		FieldEndpoint: endpoint,
	}
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}
