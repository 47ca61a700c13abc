package sanitize

// matcher is a byte-level Aho-Corasick automaton over a fixed pattern list,
// so one pass over the submission finds every pattern regardless of list size

type node struct {
	next   [256]int32 // -1 when absent
	fail   int32
	output []int // pattern indexes ending here
}

type matcher struct {
	nodes []node
	n     int // pattern count
}

func newNode() node {
	var nd node
	for i := range nd.next {
		nd.next[i] = -1
	}
	return nd
}

func newMatcher(patterns []string) *matcher {
	m := &matcher{nodes: []node{newNode()}, n: len(patterns)}
	for id, p := range patterns {
		m.add(p, id)
	}
	m.link()
	return m
}

func (m *matcher) add(pat string, id int) {
	if pat == "" {
		return
	}
	state := int32(0)
	for i := 0; i < len(pat); i++ {
		b := pat[i]
		nxt := m.nodes[state].next[b]
		if nxt == -1 {
			nxt = int32(len(m.nodes))
			m.nodes[state].next[b] = nxt
			m.nodes = append(m.nodes, newNode())
		}
		state = nxt
	}
	m.nodes[state].output = append(m.nodes[state].output, id)
}

// link computes failure links breadth first and merges outputs along them
func (m *matcher) link() {
	queue := make([]int32, 0, len(m.nodes))
	for b := range 256 {
		if s := m.nodes[0].next[b]; s != -1 {
			m.nodes[s].fail = 0
			queue = append(queue, s)
		}
	}
	for qi := 0; qi < len(queue); qi++ {
		r := queue[qi]
		for b := range 256 {
			s := m.nodes[r].next[b]
			if s == -1 {
				continue
			}
			queue = append(queue, s)

			f := m.nodes[r].fail
			for f != 0 && m.nodes[f].next[b] == -1 {
				f = m.nodes[f].fail
			}
			if nxt := m.nodes[f].next[b]; nxt != -1 && nxt != s {
				m.nodes[s].fail = nxt
			}
			m.nodes[s].output = append(m.nodes[s].output, m.nodes[m.nodes[s].fail].output...)
		}
	}
}

// present reports, per pattern index, whether it occurs anywhere in text
func (m *matcher) present(text string) []bool {
	seen := make([]bool, m.n)
	found := 0
	state := int32(0)
	for i := 0; i < len(text) && found < m.n; i++ {
		b := text[i]
		for state != 0 && m.nodes[state].next[b] == -1 {
			state = m.nodes[state].fail
		}
		if nxt := m.nodes[state].next[b]; nxt != -1 {
			state = nxt
		}
		for _, id := range m.nodes[state].output {
			if !seen[id] {
				seen[id] = true
				found++
			}
		}
	}
	return seen
}
