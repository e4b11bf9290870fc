package schedule

import (
	"fmt"
	"strings"
)

type startupUnit struct {
	Unit
	after []string
}

// AddStartup registers a system run once by Start, after the named startup
// systems. Without constraints startup systems run in registration order.
func (s *Scheduler) AddStartup(u Unit, after ...string) *Scheduler {
	s.mustBeOpen("startup system " + u.Name)
	if s.names["startup:"+u.Name] {
		panic(fmt.Sprintf("schedule: duplicate startup system %q", u.Name))
	}
	s.names["startup:"+u.Name] = true
	s.startup = append(s.startup, startupUnit{Unit: u, after: after})
	return s
}

// AddStartupChain registers startup systems that each run after the previous.
func (s *Scheduler) AddStartupChain(units ...Unit) *Scheduler {
	for i, u := range units {
		if i == 0 {
			s.AddStartup(u)
			continue
		}
		s.AddStartup(u, units[i-1].Name)
	}
	return s
}

// startupOrder sorts startup systems topologically, breaking ties by
// registration order.
func (s *Scheduler) startupOrder() ([]startupUnit, error) {
	byName := make(map[string]int, len(s.startup))
	for i, u := range s.startup {
		byName[u.Name] = i
	}

	indegree := make([]int, len(s.startup))
	next := make([][]int, len(s.startup))
	for i, u := range s.startup {
		for _, dep := range u.after {
			j, ok := byName[dep]
			if !ok {
				return nil, fmt.Errorf("schedule: startup system %q runs after unknown system %q", u.Name, dep)
			}
			next[j] = append(next[j], i)
			indegree[i]++
		}
	}

	order := make([]startupUnit, 0, len(s.startup))
	done := make([]bool, len(s.startup))
	for len(order) < len(s.startup) {
		picked := -1
		for i := range s.startup {
			if !done[i] && indegree[i] == 0 {
				picked = i
				break
			}
		}
		if picked < 0 {
			var stuck []string
			for i, u := range s.startup {
				if !done[i] {
					stuck = append(stuck, u.Name)
				}
			}
			return nil, fmt.Errorf("schedule: startup ordering cycle among %s", strings.Join(stuck, ", "))
		}
		done[picked] = true
		order = append(order, s.startup[picked])
		for _, j := range next[picked] {
			indegree[j]--
		}
	}
	return order, nil
}
