package agent

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// ParseNodeSelectors parses "key=value" pairs.
func ParseNodeSelectors(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid node selector %q, expected key=value", v)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// ParseTolerations parses "key=value:effect" (Equal) and "key:effect"
// (Exists). An empty effect tolerates every effect.
func ParseTolerations(values []string) ([]corev1.Toleration, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]corev1.Toleration, 0, len(values))
	for _, v := range values {
		kv, effect, _ := strings.Cut(v, ":")
		t := corev1.Toleration{Effect: corev1.TaintEffect(strings.TrimSpace(effect))}

		switch t.Effect {
		case "", corev1.TaintEffectNoSchedule, corev1.TaintEffectPreferNoSchedule, corev1.TaintEffectNoExecute:
		default:
			return nil, fmt.Errorf("invalid toleration %q, unknown effect %q", v, t.Effect)
		}

		key, value, hasValue := strings.Cut(kv, "=")
		t.Key = strings.TrimSpace(key)
		if t.Key == "" {
			return nil, fmt.Errorf("invalid toleration %q, expected key=value:effect", v)
		}
		if hasValue {
			t.Operator = corev1.TolerationOpEqual
			t.Value = strings.TrimSpace(value)
		} else {
			t.Operator = corev1.TolerationOpExists
		}
		out = append(out, t)
	}
	return out, nil
}
