package actions

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/theranica/rxpipe/logger"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseRun struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	Result  string            `json:"result,omitempty"`
}

// processEvent is the storage notification body: the landed object and its
// bucket, matching the cloud event payload shape.
type processEvent struct {
	Name   string `json:"name"`
	Bucket string `json:"bucket"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		chanStop <- "stop"
		log.Info("Stop signal sent")
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerFetch(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := RunMailboxFetch(r.Context(), &FetchConfig{
			LogLevel:         web.LogLevel,
			ProjectID:        web.ProjectID,
			StackDumpOnPanic: web.StackDumpOnPanic,
		})
		if err != nil {
			logAndRespond(log, err, w, ResponseRun{Status: Error, Message: fmt.Sprintf("mailbox fetch failed: %v", err)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRun{Status: Okay, Message: "mailbox fetch complete", Result: status})
	}
}

func GetHandlerProcess(log logger.Logger, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		e := processEvent{}
		if err := json.Unmarshal(b, &e); err != nil {
			logAndRespond(log, err, w, ResponseRun{Status: Error, Message: fmt.Sprintf("error unmarshalling JSON: %v", err)})
			return
		}
		if e.Name == "" || e.Bucket == "" {
			logAndRespond(log, fmt.Errorf("missing name or bucket in event"), w,
				ResponseRun{Status: Error, Message: "event must carry both name and bucket"})
			return
		}
		status, err := RunFeedProcess(r.Context(), &ProcessConfig{
			LogLevel:         web.LogLevel,
			ProjectID:        web.ProjectID,
			Bucket:           e.Bucket,
			Object:           e.Name,
			StackDumpOnPanic: web.StackDumpOnPanic,
		})
		if err != nil {
			logAndRespond(log, err, w, ResponseRun{Status: Error, Message: fmt.Sprintf("feed processing failed: %v", err)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRun{Status: Okay, Message: "feed processing complete", Result: status})
	}
}

// logAndRespond will log the error, write a http.StatusBadRequest and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, r ResponseRun) {
	log.Error(err)
	w.WriteHeader(http.StatusBadRequest)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Panic(err)
	}
	_, err = fmt.Fprint(w, string(j))
	if err != nil {
		log.Panic(err)
	}
}
