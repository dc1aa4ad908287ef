// Package dag 基于 go-dag 的任务依赖图诊断。
//
// 排期本身不依赖这里的任何结果；这里只用于在排期前后向调用方报告依赖中的问题
// （前向引用、未知引用、自引用、重复ID、循环），以及给出一个参考的拓扑分层。
package dag

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/begmaroman/go-dag"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// vertex go-dag节点（实现 Identifiable 和 Hashable 接口）
type vertex struct {
	id string
}

// ID 实现 Identifiable 接口
func (v *vertex) ID() string {
	return v.id
}

// Hash 实现 Hashable 接口，按任务ID区分节点
func (v *vertex) Hash() (dag.VHash, error) {
	return sha256.Sum256([]byte(v.id)), nil
}

// Graph 任务依赖图，边方向为 前置任务 -> 后置任务
type Graph struct {
	d     *dag.DAG[*vertex]
	order map[string]int // 任务ID首次出现的位置，用于稳定输出
}

// edgeList 去重后的依赖边，按输入顺序
type edgeList struct {
	from []string
	to   []string
	seen map[[2]string]struct{}
}

func (e *edgeList) add(from, to string) {
	key := [2]string{from, to}
	if _, ok := e.seen[key]; ok {
		return
	}
	e.seen[key] = struct{}{}
	e.from = append(e.from, from)
	e.to = append(e.to, to)
}

// adjacency 邻接表，key是节点ID，value是该节点的所有子节点ID列表
func (e *edgeList) adjacency() map[string][]string {
	graph := make(map[string][]string)
	for i := range e.from {
		graph[e.from[i]] = append(graph[e.from[i]], e.to[i])
	}
	return graph
}

// collect 收集唯一任务ID（按首次出现顺序）和所有可解析的依赖边（忽略自引用和未知ID）
func collect(tasks []schedule.TaskDescriptor) ([]string, map[string]int, *edgeList) {
	ids := make([]string, 0, len(tasks))
	order := make(map[string]int, len(tasks))
	for _, t := range tasks {
		id := string(t.ID)
		if _, ok := order[id]; ok {
			continue
		}
		order[id] = len(ids)
		ids = append(ids, id)
	}

	edges := &edgeList{seen: make(map[[2]string]struct{})}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				continue
			}
			if _, ok := order[string(dep)]; !ok {
				continue
			}
			edges.add(string(dep), string(t.ID))
		}
	}
	return ids, order, edges
}

// detectCycleDFS 使用三色标记DFS检测循环，返回闭合的循环路径（首尾相同）
// 遍历顺序按ids和邻接表的插入顺序，结果是确定的。
func detectCycleDFS(ids []string, graph map[string][]string) []string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(ids))
	parent := make(map[string]string, len(ids))
	var cycle []string

	var dfs func(nodeID string) bool
	dfs = func(nodeID string) bool {
		color[nodeID] = gray
		for _, childID := range graph[nodeID] {
			switch color[childID] {
			case white:
				parent[childID] = nodeID
				if dfs(childID) {
					return true
				}
			case gray:
				// 回边：从nodeID沿parent回溯到childID
				path := []string{nodeID}
				for cur := nodeID; cur != childID; {
					cur = parent[cur]
					path = append(path, cur)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				cycle = append(path, childID)
				return true
			}
		}
		color[nodeID] = black
		return false
	}

	for _, id := range ids {
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}

// Build 从任务列表构建依赖图
// 自引用和指向不存在任务的依赖不会成为边；存在循环时返回错误。
func Build(tasks []schedule.TaskDescriptor) (*Graph, error) {
	ids, order, edges := collect(tasks)

	// 先在邻接表上一次性检测循环，避免 go-dag 每次 AddEdge 时递归检查
	if cycle := detectCycleDFS(ids, edges.adjacency()); cycle != nil {
		return nil, fmt.Errorf("检测到循环依赖: %v", cycle)
	}

	d := dag.NewDAG[*vertex]()
	for _, id := range ids {
		if _, err := d.AddVertex(&vertex{id: id}); err != nil {
			return nil, fmt.Errorf("添加节点失败: Task ID=%s, Error=%w", id, err)
		}
	}
	for i := range edges.from {
		if err := d.AddEdge(edges.from[i], edges.to[i]); err != nil {
			return nil, fmt.Errorf("添加边失败: %s -> %s, Error=%w", edges.from[i], edges.to[i], err)
		}
	}

	return &Graph{d: d, order: order}, nil
}

// sorted 按首次出现顺序排列ID
func (g *Graph) sorted(ids []string) []schedule.TaskID {
	sort.Slice(ids, func(i, j int) bool { return g.order[ids[i]] < g.order[ids[j]] })
	out := make([]schedule.TaskID, len(ids))
	for i, id := range ids {
		out[i] = schedule.TaskID(id)
	}
	return out
}

// Size 节点数量
func (g *Graph) Size() int {
	return len(g.d.GetVertices())
}

// Roots 没有前置任务的节点
func (g *Graph) Roots() []schedule.TaskID {
	roots := g.d.GetRoots()
	ids := make([]string, 0, len(roots))
	for id := range roots {
		ids = append(ids, id)
	}
	return g.sorted(ids)
}

// Levels 使用 Kahn 算法进行拓扑分层，同一层的任务之间没有依赖关系
func (g *Graph) Levels() ([][]schedule.TaskID, error) {
	vertices := g.d.GetVertices()
	inDegree := make(map[string]int, len(vertices))
	for id := range vertices {
		parents, err := g.d.GetParents(id)
		if err != nil {
			return nil, fmt.Errorf("获取父节点失败: %s, Error=%w", id, err)
		}
		inDegree[id] = len(parents)
	}

	queue := make([]string, 0)
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	levels := make([][]schedule.TaskID, 0)
	processed := 0
	for len(queue) > 0 {
		next := make([]string, 0)
		for _, id := range queue {
			processed++
			children, err := g.d.GetChildren(id)
			if err != nil {
				return nil, fmt.Errorf("获取子节点失败: %s, Error=%w", id, err)
			}
			for childID := range children {
				inDegree[childID]--
				if inDegree[childID] == 0 {
					next = append(next, childID)
				}
			}
		}
		levels = append(levels, g.sorted(queue))
		queue = next
	}

	if processed != len(vertices) {
		return nil, fmt.Errorf("拓扑排序失败：存在未处理的节点（可能存在环）")
	}
	return levels, nil
}
