package algo

// Item 是优先队列中的元素
type Item struct {
	Value    int     // 节点编号
	Priority float64 // 优先级（越小越优先）
	Index    int     // 在heap中的下标，由heap.Interface维护
}

// PriorityQueue 实现heap.Interface
type PriorityQueue []*Item

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	return pq[i].Priority < pq[j].Priority
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x any) {
	item := x.(*Item)
	item.Index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1 // 已弹出
	*pq = old[:n-1]
	return item
}
