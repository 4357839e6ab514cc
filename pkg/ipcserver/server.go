/*
Package ipcserver implements a MessagePack IPC server over stdin/stdout for
the two string-alphabet engines (StringFuzzy and StringPredict), grounded on
the teacher's msgpack request/response loop. It is demo harness scope, not
part of the core (spec.md §1 excludes demo/test harnesses from the core
itself) — a caller-facing consumer of the engine packages, dispatching
train/search/predict/export/load requests. The token engines have no IPC
surface.

Each request on stdin and each response on stdout is one MessagePack-encoded
frame preceded by its length as a 4-byte little-endian unsigned integer.
*/
package ipcserver

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ngramkit/ngramkit/pkg/core"
	"github.com/ngramkit/ngramkit/pkg/ngramerr"
	"github.com/ngramkit/ngramkit/pkg/stringfuzzy"
	"github.com/ngramkit/ngramkit/pkg/stringpredict"
	"github.com/ngramkit/ngramkit/pkg/wire"
)

// Request is a single IPC frame.
type Request struct {
	ID     string   `msgpack:"id"`
	Engine string   `msgpack:"engine"` // "string_fuzzy" or "string_predict"
	Op     string   `msgpack:"op"`     // "train", "search", "predict", "export", "load"
	Corpus []string `msgpack:"corpus,omitempty"`
	Text   string   `msgpack:"text,omitempty"`
	Limit  int      `msgpack:"limit,omitempty"`
	Model  []byte   `msgpack:"model,omitempty"` // msgpack-encoded *Model, for "load"
}

// SuggestionFrame is one scored result in a response.
type SuggestionFrame struct {
	Value string  `msgpack:"v"`
	Score float64 `msgpack:"s"`
}

// Response is a single IPC frame.
type Response struct {
	ID          string            `msgpack:"id"`
	Status      string            `msgpack:"status"`
	Error       string            `msgpack:"error,omitempty"`
	Suggestions []SuggestionFrame `msgpack:"suggestions,omitempty"`
	Model       []byte            `msgpack:"model,omitempty"` // msgpack-encoded *Model, for "export"
	TimeTaken   int64             `msgpack:"time_ms,omitempty"`
}

// Server wires a MessagePack IPC loop to one StringFuzzy and one
// StringPredict engine instance, selected per request by the Engine field.
type Server struct {
	fuzzy   *stringfuzzy.Engine
	predict *stringpredict.Engine

	reader *bufio.Reader
	writer io.Writer
	log    *log.Logger
}

// NewServer creates a server over stdin/stdout for the given engine pair.
func NewServer(fuzzy *stringfuzzy.Engine, predict *stringpredict.Engine, reader io.Reader, writer io.Writer, logger *log.Logger) *Server {
	return &Server{
		fuzzy:   fuzzy,
		predict: predict,
		reader:  bufio.NewReader(reader),
		writer:  writer,
		log:     logger,
	}
}

// Start begins the request/response loop; returns nil on a clean EOF.
func (s *Server) Start() error {
	s.log.Debug("starting IPC server")
	for {
		frame, err := s.readFrame()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			s.log.Errorf("reading frame: %v", err)
			return err
		}
		s.handle(frame)
	}
}

func (s *Server) readFrame() ([]byte, error) {
	var length uint32
	if err := readUint32(s.reader, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readUint32(r *bufio.Reader, out *uint32) error {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	*out = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return nil
}

func (s *Server) handle(frame []byte) {
	var req Request
	if err := msgpack.Unmarshal(frame, &req); err != nil {
		s.sendError("", "invalid msgpack request", err)
		return
	}

	switch req.Op {
	case "train":
		s.handleTrain(req)
	case "search":
		s.handleSearch(req)
	case "predict":
		s.handlePredict(req)
	case "export":
		s.handleExport(req)
	case "load":
		s.handleLoad(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown op: %s", req.Op), nil)
	}
}

func (s *Server) handleTrain(req Request) {
	switch req.Engine {
	case "string_fuzzy":
		s.fuzzy.Train(req.Corpus)
	case "string_predict":
		s.predict.Train(req.Corpus)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown engine: %s", req.Engine), nil)
		return
	}
	s.send(Response{ID: req.ID, Status: "ok"})
}

func (s *Server) handleSearch(req Request) {
	if req.Engine != "string_fuzzy" {
		s.sendError(req.ID, fmt.Sprintf("search not supported for engine: %s", req.Engine), nil)
		return
	}
	s.fuzzy.Search(req.Text)
	s.send(Response{ID: req.ID, Status: "ok", Suggestions: toFrames(s.fuzzy.GetResultArray())})
}

func (s *Server) handlePredict(req Request) {
	if req.Engine != "string_predict" {
		s.sendError(req.ID, fmt.Sprintf("predict not supported for engine: %s", req.Engine), nil)
		return
	}
	s.predict.Predict(req.Text)
	s.send(Response{ID: req.ID, Status: "ok", Suggestions: toFrames(s.predict.GetResultArray())})
}

func (s *Server) handleExport(req Request) {
	var (
		data []byte
		err  error
	)
	switch req.Engine {
	case "string_fuzzy":
		data, err = wire.EncodeStringFuzzy(s.fuzzy.Export())
	case "string_predict":
		data, err = wire.EncodeStringPredict(s.predict.Export())
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown engine: %s", req.Engine), nil)
		return
	}
	if err != nil {
		s.sendError(req.ID, "failed to encode model", err)
		return
	}
	s.send(Response{ID: req.ID, Status: "ok", Model: data})
}

func (s *Server) handleLoad(req Request) {
	switch req.Engine {
	case "string_fuzzy":
		model, err := wire.DecodeStringFuzzy(req.Model)
		if err != nil {
			s.sendError(req.ID, "failed to decode model", err)
			return
		}
		if _, err := s.fuzzy.Load(model); err != nil {
			s.sendLoadError(req.ID, err)
			return
		}
	case "string_predict":
		model, err := wire.DecodeStringPredict(req.Model)
		if err != nil {
			s.sendError(req.ID, "failed to decode model", err)
			return
		}
		if _, err := s.predict.Load(model); err != nil {
			s.sendLoadError(req.ID, err)
			return
		}
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown engine: %s", req.Engine), nil)
		return
	}
	s.send(Response{ID: req.ID, Status: "ok"})
}

// sendLoadError surfaces ErrIncompatibleModel as a recoverable error
// distinct from a decode failure (spec.md §7).
func (s *Server) sendLoadError(id string, err error) {
	if err == ngramerr.ErrIncompatibleModel {
		s.sendError(id, "incompatible model type", err)
		return
	}
	s.sendError(id, "failed to load model", err)
}

func toFrames(entries []core.Entry[string]) []SuggestionFrame {
	out := make([]SuggestionFrame, len(entries))
	for i, e := range entries {
		out[i] = SuggestionFrame{Value: e.Value, Score: e.Score}
	}
	return out
}

func (s *Server) send(resp Response) {
	data, err := msgpack.Marshal(resp)
	if err != nil {
		s.log.Errorf("marshaling response: %v", err)
		return
	}
	s.writeFrame(data)
}

func (s *Server) sendError(id, message string, cause error) {
	if cause != nil {
		s.log.Errorf("%s: %v", message, cause)
	}
	s.send(Response{ID: id, Status: "error", Error: message})
}

func (s *Server) writeFrame(data []byte) {
	length := uint32(len(data))
	header := []byte{byte(length), byte(length >> 8), byte(length >> 16), byte(length >> 24)}
	if _, err := s.writer.Write(header); err != nil {
		s.log.Errorf("writing frame header: %v", err)
		return
	}
	if _, err := s.writer.Write(data); err != nil {
		s.log.Errorf("writing frame: %v", err)
	}
}
