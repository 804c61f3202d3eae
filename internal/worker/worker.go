// Package worker drives an external face engine process over a length-prefixed binary protocol.
//
// Requests go to the child's stdin, responses come back on FD 3 so the child's
// stdout and stderr stay free for its own logging.
package worker

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/recognizer"
	"github.com/andresmejia3/facelens/internal/types"
	"github.com/andresmejia3/facelens/internal/utils"
)

// Request opcodes
const (
	OpLocate    byte = 1
	OpEncode    byte = 2 // encode the given boxes
	OpEncodeAll byte = 3 // locate internally and encode every face
)

const (
	statusOK    byte = 0
	statusError byte = 1
)

var ErrEmptyCommand = errors.New("worker command is empty")

type EngineWorker struct {
	ID       int
	Cmd      *utils.SafeCommand
	Stdin    io.WriteCloser
	DataPipe io.ReadCloser

	mu sync.Mutex
}

var _ recognizer.Engine = (*EngineWorker)(nil)

// New starts the engine process described by command (program and arguments, space separated)
func New(id int, command string) (*EngineWorker, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, ErrEmptyCommand
	}
	proc := utils.NewSafeCommand(parts[0], parts[1:]...)

	// Side-channel pipe, seen by the child as FD 3
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	proc.Cmd.ExtraFiles = []*os.File{w}

	stdin, err := proc.StdinPipe()
	if err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := proc.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("worker %d failed to start: %w", id, err)
	}

	// Only the child should hold the write end
	w.Close()

	return &EngineWorker{
		ID:       id,
		Cmd:      proc,
		Stdin:    stdin,
		DataPipe: r,
	}, nil
}

// Communicate sends one framed request and reads one framed response.
// Protocol: [Length u32][Data]
func (w *EngineWorker) Communicate(data []byte) ([]byte, error) {
	if err := binary.Write(w.Stdin, binary.BigEndian, uint32(len(data))); err != nil {
		return nil, err
	}
	if _, err := w.Stdin.Write(data); err != nil {
		return nil, err
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(w.DataPipe, header); err != nil {
		return nil, err // child died or closed FD 3
	}

	respLen := binary.BigEndian.Uint32(header)
	respBody := make([]byte, respLen)
	_, err := io.ReadFull(w.DataPipe, respBody)
	return respBody, err
}

// encodeRequest builds [op][w][h][pix][n][boxes...]
func encodeRequest(op byte, f *frame.Frame, boxes []types.Box) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(1 + 8 + len(f.Pix) + 4 + len(boxes)*16)
	buf.WriteByte(op)
	binary.Write(buf, binary.BigEndian, uint32(f.Width))
	binary.Write(buf, binary.BigEndian, uint32(f.Height))
	buf.Write(f.Pix)
	binary.Write(buf, binary.BigEndian, uint32(len(boxes)))
	for _, b := range boxes {
		binary.Write(buf, binary.BigEndian, [4]int32{int32(b.Top), int32(b.Right), int32(b.Bottom), int32(b.Left)})
	}
	return buf.Bytes()
}

// readStatus consumes the status byte and turns a remote error into a Go error
func readStatus(r *bytes.Reader) error {
	status, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("empty response: %w", err)
	}
	if status == statusOK {
		return nil
	}

	var msgLen uint32
	if err := binary.Read(r, binary.BigEndian, &msgLen); err != nil {
		return fmt.Errorf("failed to read error length: %w", err)
	}
	msg := make([]byte, msgLen)
	if _, err := io.ReadFull(r, msg); err != nil {
		return fmt.Errorf("failed to read error message: %w", err)
	}
	return fmt.Errorf("engine worker error: %s", string(msg))
}

// decodeBoxes parses [status][n][n x 4 x i32]
func decodeBoxes(resp []byte) ([]types.Box, error) {
	r := bytes.NewReader(resp)
	if err := readStatus(r); err != nil {
		return nil, err
	}

	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("failed to read face count: %w", err)
	}
	boxes := make([]types.Box, 0, n)
	for i := uint32(0); i < n; i++ {
		var b [4]int32
		if err := binary.Read(r, binary.BigEndian, &b); err != nil {
			return nil, fmt.Errorf("failed to read box %d: %w", i, err)
		}
		boxes = append(boxes, types.Box{Top: int(b[0]), Right: int(b[1]), Bottom: int(b[2]), Left: int(b[3])})
	}
	return boxes, nil
}

// decodeSignatures parses [status][n][dim][n x dim x f32]
func decodeSignatures(resp []byte) ([]types.Signature, error) {
	r := bytes.NewReader(resp)
	if err := readStatus(r); err != nil {
		return nil, err
	}

	var n, dim uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("failed to read face count: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &dim); err != nil {
		return nil, fmt.Errorf("failed to read signature size: %w", err)
	}

	sigs := make([]types.Signature, 0, n)
	raw := make([]float32, dim)
	for i := uint32(0); i < n; i++ {
		if err := binary.Read(r, binary.BigEndian, raw); err != nil {
			return nil, fmt.Errorf("failed to read signature %d: %w", i, err)
		}
		sig := make(types.Signature, dim)
		for j, v := range raw {
			sig[j] = float64(v)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

func (w *EngineWorker) Locate(ctx context.Context, f *frame.Frame) ([]types.Box, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	resp, err := w.Communicate(encodeRequest(OpLocate, f, nil))
	if err != nil {
		return nil, fmt.Errorf("worker %d: %w", w.ID, err)
	}
	return decodeBoxes(resp)
}

func (w *EngineWorker) Encode(ctx context.Context, f *frame.Frame, boxes []types.Box) ([]types.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	op := OpEncode
	if boxes == nil {
		op = OpEncodeAll
	}
	resp, err := w.Communicate(encodeRequest(op, f, boxes))
	if err != nil {
		return nil, fmt.Errorf("worker %d: %w", w.ID, err)
	}
	return decodeSignatures(resp)
}

// Close shuts the pipes and waits for the child to exit
func (w *EngineWorker) Close() error {
	w.Stdin.Close()
	w.DataPipe.Close()
	if w.Cmd == nil {
		return nil
	}
	return w.Cmd.Wait()
}
