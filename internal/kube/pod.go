package kube

import "github.com/adt-dummy/dami/internal/apperr"

// PhaseRunning is the pod phase preferred during selection.
const PhaseRunning = "Running"

// PodList is the subset of "kubectl get pods -o json" that selection needs.
type PodList struct {
	Items []Pod `json:"items"`
}

// Pod is a single pod object.
type Pod struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Status struct {
		Phase string `json:"phase"`
	} `json:"status"`
}

// NewPod builds a Pod, mostly for tests.
func NewPod(name, phase string) Pod {
	var p Pod
	p.Metadata.Name = name
	p.Status.Phase = phase
	return p
}

// SelectPod picks a pod from list. An explicit name must be present in the
// list; otherwise the first running pod wins, falling back to the first item.
func SelectPod(list *PodList, explicit string) (string, error) {
	if list == nil || len(list.Items) == 0 {
		return "", apperr.New("No pods found for selector")
	}

	if explicit != "" {
		for _, item := range list.Items {
			if item.Metadata.Name == explicit {
				return explicit, nil
			}
		}
		return "", apperr.New("Pod not found: " + explicit)
	}

	selected := list.Items[0]
	for _, item := range list.Items {
		if item.Status.Phase == PhaseRunning {
			selected = item
			break
		}
	}
	if selected.Metadata.Name == "" {
		return "", apperr.New("Pod selection failed: missing pod name")
	}
	return selected.Metadata.Name, nil
}
