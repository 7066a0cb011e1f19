// Package metrics exposes Prometheus counters for the verification and elevation workflow.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder counts workflow outcomes. A nil *Recorder records nothing.
type Recorder struct {
	otpIssued        *prometheus.CounterVec
	otpVerifications *prometheus.CounterVec
	signups          *prometheus.CounterVec
	adminRequests    *prometheus.CounterVec
	adminApprovals   *prometheus.CounterVec
}

// New registers the workflow counters on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		otpIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_issued_total",
			Help: "OTP issuance attempts by outcome.",
		}, []string{"outcome"}),
		otpVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_verifications_total",
			Help: "OTP verification attempts by outcome.",
		}, []string{"outcome"}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Signup attempts by outcome.",
		}, []string{"outcome"}),
		adminRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Admin access request submissions by outcome.",
		}, []string{"outcome"}),
		adminApprovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_approvals_total",
			Help: "Admin access approvals by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.otpIssued, r.otpVerifications, r.signups, r.adminRequests, r.adminApprovals)
	return r
}

func (r *Recorder) OTPIssued(outcome string) {
	if r != nil {
		r.otpIssued.WithLabelValues(outcome).Inc()
	}
}

func (r *Recorder) OTPVerified(outcome string) {
	if r != nil {
		r.otpVerifications.WithLabelValues(outcome).Inc()
	}
}

func (r *Recorder) Signup(outcome string) {
	if r != nil {
		r.signups.WithLabelValues(outcome).Inc()
	}
}

func (r *Recorder) AdminRequest(outcome string) {
	if r != nil {
		r.adminRequests.WithLabelValues(outcome).Inc()
	}
}

func (r *Recorder) AdminApproval(outcome string) {
	if r != nil {
		r.adminApprovals.WithLabelValues(outcome).Inc()
	}
}
