package ir

import (
	"strings"
)

// CombineTextParts combines all text content parts from a message.
// Optimized to avoid allocations for single-part messages.
func CombineTextParts(msg Message) string {
	// Fast path: count parts first
	count := 0
	var single string
	for _, part := range msg.Content {
		if part.Type == ContentTypeText && part.Text != "" {
			count++
			single = part.Text
			if count > 1 {
				break // Need builder anyway
			}
		}
	}

	if count == 0 {
		return ""
	}
	if count == 1 {
		return single
	}

	// Multiple parts: use builder
	var b strings.Builder
	b.Grow(count * 256)
	for _, part := range msg.Content {
		if part.Type == ContentTypeText && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// BuildToolMaps creates both tool call ID->name map and tool results map in a
// single pass, reconciling legacy clients that never assigned a real tool
// call id (ID is empty or equals the function name) by generating one and
// rewriting both the call and its matching result in place. Matching for
// the legacy case is FIFO per name: the n-th result naming a given function
// is paired with the n-th pending call to that function.
func BuildToolMaps(messages []Message) (map[string]string, map[string]*ToolResultPart) {
	idToName := make(map[string]string, 8)
	results := make(map[string]*ToolResultPart, 8)

	// name -> queue of generated ids awaiting a result
	nameToIDs := make(map[string][]string, 8)

	for i := range messages {
		msg := &messages[i]
		switch msg.Role {
		case RoleAssistant:
			for j := range msg.ToolCalls {
				tc := &msg.ToolCalls[j]
				if tc.ID == "" || tc.ID == tc.Name {
					tc.ID = GenToolCallID()
				}
				idToName[tc.ID] = tc.Name
				nameToIDs[tc.Name] = append(nameToIDs[tc.Name], tc.ID)
			}
		case RoleTool, RoleUser:
			for j := range msg.Content {
				part := &msg.Content[j]
				if part.Type == ContentTypeToolResult && part.ToolResult != nil {
					tr := part.ToolResult
					originalID := tr.ToolCallID
					if queue := nameToIDs[originalID]; len(queue) > 0 {
						tr.ToolCallID = queue[0]
						nameToIDs[originalID] = queue[1:]
					}
					results[tr.ToolCallID] = tr
				}
			}
		}
	}
	return idToName, results
}
