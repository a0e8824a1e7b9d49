package wire

import "github.com/rantoniello/mediaprocessors/status"

// Envelope is the REST response envelope every restapi handler returns.
type Envelope struct {
	Code    int         `json:"code"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Method is an HTTP-ish verb name used to look up the method→code map.
type Method string

const (
	MethodGET    Method = "GET"
	MethodPOST   Method = "POST"
	MethodPUT    Method = "PUT"
	MethodDELETE Method = "DELETE"
)

// codeTable is the method→code map: GET→{200,404,304},
// POST→{201,404,409}, PUT→{200,404}, DELETE→{200,404}; everything
// else collapses to 404. No status maps to 204.
var codeTable = map[Method]map[status.Status]int{
	MethodGET: {
		status.Success:     200,
		status.NotFound:    404,
		status.NotModified: 304,
	},
	MethodPOST: {
		status.Success:  201,
		status.NotFound: 404,
		status.Conflict: 409,
	},
	// A successful PUT, plain or type substitution, always maps to 200;
	// 204 ("no content") is never returned, even though the PUT reply's
	// data is null in both cases.
	MethodPUT: {
		status.Success:  200,
		status.NotFound: 404,
	},
	MethodDELETE: {
		status.Success:  200,
		status.NotFound: 404,
	},
}

// Code maps a method and a status to the wire status code. Any
// combination absent from the table collapses to 404.
func Code(m Method, st status.Status) int {
	if table, ok := codeTable[m]; ok {
		if code, ok := table[st]; ok {
			return code
		}
	}
	return 404
}

// NewEnvelope builds the REST envelope for a given method, status, and
// payload.
func NewEnvelope(m Method, st status.Status, data interface{}) Envelope {
	return Envelope{
		Code:    Code(m, st),
		Status:  st.String(),
		Message: st.String(),
		Data:    data,
	}
}
