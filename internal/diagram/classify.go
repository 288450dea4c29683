package diagram

// Groups is the result of Classify: one list per entity kind, in input order.
type Groups struct {
	Services []*Node
	Networks []*Node
	Volumes  []*Node
	Secrets  []*Node
	Configs  []*Node
	// Unknown holds nodes whose type is not an entity kind.
	Unknown []*Node
}

// Classify partitions nodes by type. The returned pointers refer into nodes.
func Classify(nodes []Node) Groups {
	var g Groups
	for i := range nodes {
		n := &nodes[i]
		switch n.Type {
		case KindService:
			g.Services = append(g.Services, n)
		case KindNetwork:
			g.Networks = append(g.Networks, n)
		case KindVolume:
			g.Volumes = append(g.Volumes, n)
		case KindSecret:
			g.Secrets = append(g.Secrets, n)
		case KindConfig:
			g.Configs = append(g.Configs, n)
		default:
			g.Unknown = append(g.Unknown, n)
		}
	}
	return g
}

// Of returns the group for kind k.
func (g Groups) Of(k Kind) []*Node {
	switch k {
	case KindService:
		return g.Services
	case KindNetwork:
		return g.Networks
	case KindVolume:
		return g.Volumes
	case KindSecret:
		return g.Secrets
	case KindConfig:
		return g.Configs
	}
	return nil
}
