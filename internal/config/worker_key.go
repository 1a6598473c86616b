package config

type WorkerKeyStruct struct {
	OfflineExamQueue string
}

var WorkerKey = &WorkerKeyStruct{
	OfflineExamQueue: "offline_exam_queue",
}
