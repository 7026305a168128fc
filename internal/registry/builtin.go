package registry

// DefaultProfileData defines the built-in catalog in Go structures to avoid
// parsing fragility. It is used verbatim when no profile files exist on disk.
// Weights follow a simple scale: 3.0 for signals that name the domain
// outright, around 2.0-2.5 for strong tool and phrasing cues, 1.5 for weak
// cues that only matter in combination.
var DefaultProfileData = []Profile{
	{
		ID:    "security",
		Title: "Security Engineering",
		Description: "Adopts an offensive-security mindset: threat models first, assumes hostile input, " +
			"and reads code the way an attacker would. Answers lead with risk severity and concrete mitigations.",
		Signals: []Signal{
			{Category: "core", Pattern: "security", Weight: 3.0},
			{Category: "core", Pattern: "vulnerability", Weight: 3.0},
			{Category: "core", Pattern: "exploit", Weight: 2.5},
			{Category: "core", Pattern: "encryption", Weight: 2.0},
			{Category: "core", Pattern: "authentication", Weight: 2.0},
			{Category: "tools", Pattern: "nmap", Weight: 2.0},
			{Category: "tools", Pattern: "burp suite", Weight: 2.0},
			{Category: "tools", Pattern: "wireshark", Weight: 1.5},
			{Category: "tools", Pattern: "vault", Weight: 1.5},
			{Category: "actions", Pattern: "pentest", Weight: 3.0},
			{Category: "actions", Pattern: "harden", Weight: 2.0},
			{Category: "actions", Pattern: "audit", Weight: 1.5},
			{Category: "context", Pattern: "(?i)\\bcve-\\d{4}-\\d+\\b", Weight: 3.0, Regex: true},
			{Category: "context", Pattern: "(?i)zero.?day", Weight: 2.5, Regex: true},
			{Category: "context", Pattern: "(?i)sql\\s+injection", Weight: 2.5, Regex: true},
			{Category: "context", Pattern: "(?i)\\bxss\\b", Weight: 2.0, Regex: true},
		},
	},
	{
		ID:    "cloud",
		Title: "Cloud Infrastructure",
		Description: "Thinks in managed services, failure domains, and monthly invoices. Prefers " +
			"provider-native building blocks over hand-rolled infrastructure and always names the cost implications.",
		Signals: []Signal{
			{Category: "core", Pattern: "cloud", Weight: 2.5},
			{Category: "core", Pattern: "aws", Weight: 3.0},
			{Category: "core", Pattern: "azure", Weight: 3.0},
			{Category: "core", Pattern: "gcp", Weight: 3.0},
			{Category: "tools", Pattern: "cloudformation", Weight: 2.5},
			{Category: "tools", Pattern: "terraform", Weight: 2.5},
			{Category: "tools", Pattern: "s3 bucket", Weight: 2.0},
			{Category: "tools", Pattern: "ec2", Weight: 2.0},
			{Category: "tools", Pattern: "lambda", Weight: 2.0},
			{Category: "tools", Pattern: "iam", Weight: 2.0},
			{Category: "actions", Pattern: "provision", Weight: 2.0},
			{Category: "context", Pattern: "(?i)migrat\\w*\\s+to\\s+(the\\s+)?cloud", Weight: 2.5, Regex: true},
			{Category: "context", Pattern: "(?i)\\b(us|eu|ap)-(east|west|central|north|south)\\w*-\\d\\b", Weight: 2.5, Regex: true},
		},
	},
	{
		ID:    "kubernetes",
		Title: "Kubernetes Operations",
		Description: "Lives in manifests and control loops. Diagnoses workloads by reading events and " +
			"describes fixes as declarative state changes, never imperative pokes at pods.",
		Signals: []Signal{
			{Category: "core", Pattern: "kubernetes", Weight: 3.0},
			{Category: "core", Pattern: "k8s", Weight: 3.0},
			{Category: "core", Pattern: "container", Weight: 2.0},
			{Category: "core", Pattern: "cluster", Weight: 2.0},
			{Category: "tools", Pattern: "kubectl", Weight: 3.0},
			{Category: "tools", Pattern: "helm", Weight: 2.5},
			{Category: "tools", Pattern: "istio", Weight: 2.0},
			{Category: "tools", Pattern: "kustomize", Weight: 2.0},
			{Category: "actions", Pattern: "rollout", Weight: 2.0},
			{Category: "actions", Pattern: "deploy", Weight: 1.5},
			{Category: "actions", Pattern: "scale", Weight: 1.5},
			{Category: "context", Pattern: "(?i)\\b(pod|deployment|statefulset|daemonset)s?\\b", Weight: 2.5, Regex: true},
			{Category: "context", Pattern: "(?i)\\bnamespace\\b", Weight: 1.5, Regex: true},
		},
	},
	{
		ID:    "database",
		Title: "Database Engineering",
		Description: "Treats the query planner as the ground truth. Reasons about indexes, transaction " +
			"isolation, and data migrations, and insists on seeing EXPLAIN output before tuning anything.",
		Signals: []Signal{
			{Category: "core", Pattern: "database", Weight: 3.0},
			{Category: "core", Pattern: "sql", Weight: 2.5},
			{Category: "core", Pattern: "schema", Weight: 2.0},
			{Category: "tools", Pattern: "postgres", Weight: 3.0},
			{Category: "tools", Pattern: "mysql", Weight: 3.0},
			{Category: "tools", Pattern: "sqlite", Weight: 2.5},
			{Category: "tools", Pattern: "redis", Weight: 2.0},
			{Category: "actions", Pattern: "vacuum", Weight: 2.0},
			{Category: "actions", Pattern: "reindex", Weight: 2.0},
			{Category: "context", Pattern: "(?i)\\bselect\\s+.+\\s+from\\b", Weight: 2.5, Regex: true},
			{Category: "context", Pattern: "(?i)slow\\s+quer(y|ies)", Weight: 2.5, Regex: true},
			{Category: "context", Pattern: "(?i)\\bdeadlocks?\\b", Weight: 2.5, Regex: true},
		},
	},
	{
		ID:    "networking",
		Title: "Network Engineering",
		Description: "Debugs from layer 3 upward. Wants packet captures over anecdotes and answers " +
			"with the exact hop, port, or rule that drops the traffic.",
		Signals: []Signal{
			{Category: "core", Pattern: "dns", Weight: 3.0},
			{Category: "core", Pattern: "firewall", Weight: 3.0},
			{Category: "core", Pattern: "network", Weight: 2.5},
			{Category: "core", Pattern: "vpn", Weight: 2.5},
			{Category: "core", Pattern: "subnet", Weight: 2.5},
			{Category: "tools", Pattern: "iptables", Weight: 3.0},
			{Category: "tools", Pattern: "nginx", Weight: 2.5},
			{Category: "tools", Pattern: "haproxy", Weight: 2.5},
			{Category: "tools", Pattern: "tcpdump", Weight: 2.5},
			{Category: "actions", Pattern: "traceroute", Weight: 2.0},
			{Category: "context", Pattern: "\\b\\d{1,3}(\\.\\d{1,3}){3}\\b", Weight: 2.5, Regex: true},
			{Category: "context", Pattern: "(?i)\\bport\\s+\\d+\\b", Weight: 2.0, Regex: true},
			{Category: "context", Pattern: "(?i)connection\\s+(refused|reset|timed?\\s*out)", Weight: 2.5, Regex: true},
		},
	},
	{
		ID:    "cicd",
		Title: "CI/CD and Release Engineering",
		Description: "Owns the path from commit to production. Optimizes for reproducible builds and " +
			"boring deploys; treats a flaky pipeline as a sev-2, not a nuisance.",
		Signals: []Signal{
			{Category: "core", Pattern: "pipeline", Weight: 2.5},
			{Category: "core", Pattern: "release", Weight: 2.0},
			{Category: "core", Pattern: "artifact", Weight: 2.0},
			{Category: "tools", Pattern: "jenkins", Weight: 3.0},
			{Category: "tools", Pattern: "github actions", Weight: 3.0},
			{Category: "tools", Pattern: "gitlab", Weight: 2.5},
			{Category: "tools", Pattern: "argocd", Weight: 2.5},
			{Category: "actions", Pattern: "automate", Weight: 1.5},
			{Category: "actions", Pattern: "deploy", Weight: 1.5},
			{Category: "context", Pattern: "(?i)\\bci/?cd\\b", Weight: 3.0, Regex: true},
			{Category: "context", Pattern: "(?i)\\bpull\\s+request\\b", Weight: 2.0, Regex: true},
			{Category: "context", Pattern: "(?i)flaky\\s+(test|build|pipeline)", Weight: 2.5, Regex: true},
		},
	},
	{
		ID:    "observability",
		Title: "Observability",
		Description: "Believes you cannot fix what you cannot see. Designs metrics, traces, and alerts " +
			"around user-visible symptoms and pushes back on dashboards nobody reads.",
		Signals: []Signal{
			{Category: "core", Pattern: "monitoring", Weight: 2.5},
			{Category: "core", Pattern: "metrics", Weight: 2.5},
			{Category: "core", Pattern: "tracing", Weight: 2.5},
			{Category: "core", Pattern: "alert", Weight: 2.0},
			{Category: "tools", Pattern: "prometheus", Weight: 3.0},
			{Category: "tools", Pattern: "grafana", Weight: 3.0},
			{Category: "tools", Pattern: "datadog", Weight: 2.5},
			{Category: "tools", Pattern: "opentelemetry", Weight: 2.5},
			{Category: "actions", Pattern: "instrument", Weight: 2.0},
			{Category: "context", Pattern: "(?i)\\bdashboards?\\b", Weight: 1.5, Regex: true},
			{Category: "context", Pattern: "(?i)\\bslos?\\b", Weight: 2.0, Regex: true},
			{Category: "context", Pattern: "(?i)\\bon.?call\\b", Weight: 2.0, Regex: true},
		},
	},
	{
		ID:    "performance",
		Title: "Performance Engineering",
		Description: "Measures before touching anything. Hunts allocation churn, lock contention, and " +
			"tail latency with profilers, and reports wins in numbers rather than adjectives.",
		Signals: []Signal{
			{Category: "core", Pattern: "performance", Weight: 2.5},
			{Category: "core", Pattern: "latency", Weight: 2.5},
			{Category: "core", Pattern: "throughput", Weight: 2.5},
			{Category: "core", Pattern: "bottleneck", Weight: 3.0},
			{Category: "tools", Pattern: "pprof", Weight: 3.0},
			{Category: "tools", Pattern: "profiler", Weight: 2.5},
			{Category: "tools", Pattern: "flamegraph", Weight: 2.5},
			{Category: "actions", Pattern: "benchmark", Weight: 2.5},
			{Category: "actions", Pattern: "optimize", Weight: 2.0},
			{Category: "context", Pattern: "(?i)\\b\\d+\\s*(ms|qps|rps)\\b", Weight: 2.0, Regex: true},
			{Category: "context", Pattern: "(?i)too\\s+slow", Weight: 2.5, Regex: true},
			{Category: "context", Pattern: "(?i)memory\\s+leak", Weight: 2.5, Regex: true},
		},
	},
}
