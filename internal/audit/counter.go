// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package audit

import "strings"

// findingCounter counts complete finding objects as they become parseable
// in a partial JSON stream. It locates the "findings" array in the
// accumulated text, then tracks balanced braces (string- and escape-aware)
// so an object is counted exactly once, when its closing brace arrives.
// Count never decreases, which gives callers the monotonic progress
// ordering they rely on.
type findingCounter struct {
	buf       strings.Builder // Accumulates text until the findings array is located
	engaged   bool            // True once we are inside the findings array
	exhausted bool            // True once the findings array has closed

	inString bool
	escaped  bool
	objDepth int // Brace depth inside the current finding object
	arrDepth int // Bracket depth within the findings array (1 = top level)

	count int
}

// Feed consumes the next chunk of streamed text and returns the current
// count of complete finding objects.
func (c *findingCounter) Feed(chunk string) int {
	if c.exhausted {
		return c.count
	}

	if !c.engaged {
		c.buf.WriteString(chunk)
		text := c.buf.String()
		i := strings.Index(text, `"findings"`)
		if i < 0 {
			return c.count
		}
		rest := text[i+len(`"findings"`):]
		j := strings.Index(rest, "[")
		if j < 0 {
			return c.count
		}
		c.engaged = true
		c.arrDepth = 1
		c.buf.Reset()
		c.scan(rest[j+1:])
		return c.count
	}

	c.scan(chunk)
	return c.count
}

// Count returns the number of complete finding objects seen so far.
func (c *findingCounter) Count() int {
	return c.count
}

func (c *findingCounter) scan(text string) {
	for i := 0; i < len(text); i++ {
		ch := text[i]

		if c.inString {
			switch {
			case c.escaped:
				c.escaped = false
			case ch == '\\':
				c.escaped = true
			case ch == '"':
				c.inString = false
			}
			continue
		}

		switch ch {
		case '"':
			c.inString = true
		case '{':
			c.objDepth++
		case '}':
			if c.objDepth > 0 {
				c.objDepth--
				if c.objDepth == 0 {
					c.count++
				}
			}
		case '[':
			c.arrDepth++
		case ']':
			c.arrDepth--
			if c.arrDepth == 0 {
				c.exhausted = true
				return
			}
		}
	}
}
