package domain

const (
	MethodScenarioReady            = "onScenarioReady"
	MethodScenarioComplete         = "onScenarioComplete"
	MethodScenarioTeardownComplete = "onScenarioTeardownComplete"
	MethodScenarioError            = "onScenarioError"
	MethodScenarioServingClients   = "onScenarioServingClients"
	MethodScenarioServingComplete  = "onScenarioServingComplete"

	MethodAuthorizeRequest               = "onAuthorizeRequest"
	MethodReauthorizeRequest             = "onReauthorizeRequest"
	MethodSignTransactionsRequest        = "onSignTransactionsRequest"
	MethodSignMessagesRequest            = "onSignMessagesRequest"
	MethodSignAndSendTransactionsRequest = "onSignAndSendTransactionsRequest"
)

const (
	ArgSessionID  = "sessionId"
	ArgRequestID  = "requestId"
	ArgParamsJSON = "paramsJson"
	ArgError      = "error"
)

// Notification is a one-way message from the bridge to the consumer layer.
type Notification struct {
	Method string
	Args   map[string]any
}

func ScenarioNotification(method string, sessionID SessionID) Notification {
	return Notification{
		Method: method,
		Args:   map[string]any{ArgSessionID: string(sessionID)},
	}
}

func RequestNotification(method string, requestID RequestID, sessionID SessionID, paramsJSON string) Notification {
	return Notification{
		Method: method,
		Args: map[string]any{
			ArgRequestID:  string(requestID),
			ArgSessionID:  string(sessionID),
			ArgParamsJSON: paramsJSON,
		},
	}
}

// LifecycleNotification carries the error key only when errMessage is set.
func LifecycleNotification(method string, sessionID SessionID, errMessage string) Notification {
	n := ScenarioNotification(method, sessionID)
	if errMessage != "" {
		n.Args[ArgError] = errMessage
	}
	return n
}
