package core

import (
	"strconv"

	"pkt.systems/gdbx/schema"
)

// StackModel merges successive stack frame snapshots into one persistent
// window over the observed address range. Access is single-owner; callers
// that share a model across goroutines must serialize ApplySnapshot.
type StackModel struct {
	top schema.Address
	buf []schema.Word
}

// NewStackModel returns an empty model.
func NewStackModel() *StackModel {
	return &StackModel{}
}

// ApplySnapshot folds one snapshot into the window and returns the
// refreshed view. The frame's memory payload is taken over by the model and
// must not be reused by the caller. An empty snapshot clears the window.
func (m *StackModel) ApplySnapshot(frame *schema.StackFrame) schema.StackView {
	if frame.Empty() {
		m.top = 0
		m.buf = nil
		return schema.StackView{}
	}

	frameTop := frame.StackPointer
	frameBottom := frameTop + schema.Address(len(frame.Memory))

	if m.buf == nil {
		m.top = frameTop
		m.buf = frame.Memory
	} else {
		windowBottom := m.top + schema.Address(len(m.buf))
		newTop := m.top
		if frameTop < newTop {
			newTop = frameTop
		}
		newBottom := windowBottom
		if frameBottom > newBottom {
			newBottom = frameBottom
		}

		if newTop == m.top && newBottom == windowBottom {
			// Window bounds unchanged: overwrite the frame's range in
			// place, keeping the existing buffer.
			copy(m.buf[frameTop-m.top:], frame.Memory)
		} else {
			buf := make([]schema.Word, newBottom-newTop)
			for i := range buf {
				addr := newTop + schema.Address(i)
				switch {
				case addr >= frameTop && addr < frameBottom:
					// The frame is the most recent observation and wins.
					buf[i] = frame.Memory[addr-frameTop]
				case addr >= m.top && addr < windowBottom:
					buf[i] = m.buf[addr-m.top]
				}
			}
			m.top = newTop
			m.buf = buf
		}
	}

	view := buildStackView(m.top, m.buf, frame.StackPointer, frame.FramePointer)
	frame.Memory = nil // consumed
	return view
}

// buildStackView groups the window into rows of four words. Rows above the
// stack pointer are unreachable through the frame pointer and render greyed
// with the "n/a" label; others carry the signed frame pointer offset. A row
// whose first address equals the stack pointer or the frame pointer carries
// that tag; the tags are independent and may land on the same row.
func buildStackView(top schema.Address, buf []schema.Word, sp, fp schema.Address) schema.StackView {
	view := schema.StackView{Top: top, Size: len(buf)}
	if len(buf) == 0 {
		return view
	}
	rows := (len(buf) + 3) / 4
	view.Rows = make([]schema.StackRow, 0, rows)
	for r := 0; r < rows; r++ {
		row := schema.StackRow{Address: top + schema.Address(r*4)}
		for c := 0; c < 4; c++ {
			if i := r*4 + c; i < len(buf) {
				row.Values[c] = buf[i]
			}
		}
		if row.Address < sp {
			row.Label = schema.RowLabelUnreachable
			row.Greyed = true
		} else {
			row.Label = strconv.FormatInt(int64(row.Address)-int64(fp), 10)
		}
		if sp == row.Address {
			row.Highlight |= schema.HighlightStackPointer
		}
		if fp == row.Address {
			row.Highlight |= schema.HighlightFramePointer
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
