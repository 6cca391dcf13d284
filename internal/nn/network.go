package nn

import "fmt"

// Node is a summing unit. Nodes listed in the inputs passed to Forward keep
// their given value.
type Node struct {
	ID         string
	Activation string
}

type Link struct {
	From   string
	To     string
	Weight float64
}

// Network is a feed-forward graph whose Nodes are already in evaluation order.
type Network struct {
	Nodes []Node
	Links []Link
}

func Forward(net Network, inputByNode map[string]float64) (map[string]float64, error) {
	values := make(map[string]float64, len(net.Nodes))
	for id, value := range inputByNode {
		values[id] = value
	}

	incoming := make(map[string][]Link, len(net.Nodes))
	for _, link := range net.Links {
		incoming[link.To] = append(incoming[link.To], link)
	}

	for _, node := range net.Nodes {
		if _, fixedInput := inputByNode[node.ID]; fixedInput {
			continue
		}

		total := 0.0
		for _, link := range incoming[node.ID] {
			from, ok := values[link.From]
			if !ok {
				return nil, fmt.Errorf("node %s: input %s not evaluated yet", node.ID, link.From)
			}
			total += from * link.Weight
		}

		activated, err := applyActivation(node.Activation, total)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.ID, err)
		}
		values[node.ID] = activated
	}

	return values, nil
}

func applyActivation(name string, x float64) (float64, error) {
	if name == "" {
		name = "identity"
	}
	fn, err := GetActivation(name)
	if err != nil {
		return 0, fmt.Errorf("unsupported activation: %s", name)
	}
	return fn(x), nil
}
