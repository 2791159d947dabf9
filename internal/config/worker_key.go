package config

type WorkerKeyStruct struct {
	PersistResponsesQueue string
	PersistWarningsQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResponsesQueue: "persist_responses_queue",
	PersistWarningsQueue:  "persist_warnings_queue",
}
