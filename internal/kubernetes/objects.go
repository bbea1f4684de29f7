package kubernetes

import (
	"fmt"
	"sort"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

// EnvProperties carries the rendered cluster configuration into the job manager.
const EnvProperties = "FLINK_PROPERTIES"

// EnvShipFiles lists the directories staged into the cluster.
const EnvShipFiles = "SESSIONCTL_SHIP_FILES"

func labelsFor(name string) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelComponent: ComponentMaster,
		LabelInstance:  name,
	}
}

func buildDeployment(clusterID, name, namespace string, port int32, cfg config.Configuration) *appsv1.Deployment {
	replicas := int32(1)
	labels := labelsFor(name)

	container := corev1.Container{
		Name:  containerName,
		Image: cfg.GetString(config.KeyImage, ""),
		Args:  []string{"jobmanager"},
		Ports: []corev1.ContainerPort{{
			Name:          restPortName,
			ContainerPort: port,
			Protocol:      corev1.ProtocolTCP,
		}},
		Env: []corev1.EnvVar{
			{Name: EnvProperties, Value: renderProperties(cfg)},
			{Name: EnvShipFiles, Value: cfg.GetString(config.KeyShipFiles, "")},
		},
		ReadinessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: "/config",
					Port: intstr.FromString(restPortName),
				},
			},
			PeriodSeconds: 5,
		},
	}
	if mem := cfg.GetString(config.KeyJobManagerMemory, ""); mem != "" {
		q, err := memoryQuantity(mem)
		if err != nil {
			logging.Warn("Kubernetes", "Ignoring %s=%q for %s, no memory limit set: %v", config.KeyJobManagerMemory, mem, name, err)
		} else {
			container.Resources.Limits = corev1.ResourceList{corev1.ResourceMemory: q}
			container.Resources.Requests = corev1.ResourceList{corev1.ResourceMemory: q}
		}
	}

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels,
			Annotations: map[string]string{
				AnnotationApplicationID: clusterID,
				AnnotationFinalStatus:   string(controlplane.FinalStatusUndefined),
				AnnotationShipFiles:     cfg.GetString(config.KeyShipFiles, ""),
				AnnotationDistArtifact:  cfg.GetString(config.KeyDistArtifact, ""),
			},
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{container},
				},
			},
		},
	}
}

func buildService(clusterID, name, namespace string, port int32) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      serviceName(name),
			Namespace: namespace,
			Labels:    labelsFor(name),
			Annotations: map[string]string{
				AnnotationApplicationID: clusterID,
			},
		},
		Spec: corev1.ServiceSpec{
			Selector: labelsFor(name),
			Ports: []corev1.ServicePort{{
				Name:       restPortName,
				Port:       port,
				TargetPort: intstr.FromString(restPortName),
				Protocol:   corev1.ProtocolTCP,
			}},
		},
	}
}

// renderProperties renders cfg as sorted "key: value" lines, the format the
// job manager image reads from its environment. Credentials are left out.
func renderProperties(cfg config.Configuration) string {
	keys := cfg.Keys()
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if k == config.KeyAuthTokenFile {
			continue
		}
		v, _ := cfg.Get(k)
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}
	return b.String()
}

// EndpointResolver turns a cluster's REST Service into a web URL.
type EndpointResolver func(svc *corev1.Service) string

// ServiceDNSResolver prefers a load balancer ingress and falls back to the
// in-cluster DNS name of the Service.
func ServiceDNSResolver(svc *corev1.Service) string {
	port := int32(0)
	for _, p := range svc.Spec.Ports {
		if p.Name == restPortName {
			port = p.Port
			break
		}
	}
	if port == 0 {
		return ""
	}

	for _, ing := range svc.Status.LoadBalancer.Ingress {
		host := ing.Hostname
		if host == "" {
			host = ing.IP
		}
		if host != "" {
			return fmt.Sprintf("http://%s:%d", host, port)
		}
	}
	return fmt.Sprintf("http://%s.%s.svc:%d", svc.Name, svc.Namespace, port)
}

// memoryUnits maps the runtime's memory size units, all binary multiples, to
// Kubernetes quantity suffixes.
var memoryUnits = map[string]string{
	"":          "",
	"b":         "",
	"bytes":     "",
	"k":         "Ki",
	"kb":        "Ki",
	"kibibytes": "Ki",
	"m":         "Mi",
	"mb":        "Mi",
	"mebibytes": "Mi",
	"g":         "Gi",
	"gb":        "Gi",
	"gibibytes": "Gi",
	"t":         "Ti",
	"tb":        "Ti",
	"tebibytes": "Ti",
}

// memoryQuantity converts a memory size such as "1600m", "2 gb" or "1024"
// (bytes) into a quantity.
func memoryQuantity(size string) (resource.Quantity, error) {
	size = strings.TrimSpace(size)
	i := 0
	for i < len(size) && size[i] >= '0' && size[i] <= '9' {
		i++
	}
	if i == 0 {
		return resource.Quantity{}, fmt.Errorf("memory size %q does not start with a number", size)
	}
	unit := strings.ToLower(strings.TrimSpace(size[i:]))
	suffix, ok := memoryUnits[unit]
	if !ok {
		return resource.Quantity{}, fmt.Errorf("memory size %q has unknown unit %q", size, unit)
	}
	return resource.ParseQuantity(size[:i] + suffix)
}
