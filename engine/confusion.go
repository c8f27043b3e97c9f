package engine

// Confusion is an out-of-bag confusion matrix for classification forests.
// Counts[i][j] is the number of out-of-bag samples of class Classes[i] that were
// predicted as class Classes[j].
type Confusion struct {
	Classes []float64
	Counts  [][]int
}

// Total returns the number of out-of-bag samples counted.
func (c *Confusion) Total() int {
	if c == nil {
		return 0
	}
	var total int
	for i := range c.Counts {
		for j := range c.Counts[i] {
			total += c.Counts[i][j]
		}
	}
	return total
}

// Accuracy returns the fraction of out-of-bag samples on the diagonal.
func (c *Confusion) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	var correct int
	for i := range c.Counts {
		correct += c.Counts[i][i]
	}
	return float64(correct) / float64(total)
}
