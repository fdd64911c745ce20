package config

// MergeLocal applies build-root overrides to a job, returning a new Job.
// Returns job unchanged if local is nil.
func MergeLocal(job Job, local *LocalConfig) Job {
	if local == nil {
		return job
	}

	merged := job
	if local.LocalPath != "" {
		merged.LocalPath = local.LocalPath
	}
	if local.WorkspaceName != "" {
		merged.WorkspaceName = local.WorkspaceName
	}
	if local.UseUpdate != nil {
		merged.UseUpdate = *local.UseUpdate
	}
	return merged
}

// ForRoot returns the job called name with the overrides found in root.
func (c *Config) ForRoot(name, root string) (Job, error) {
	job, err := c.Job(name)
	if err != nil {
		return Job{}, err
	}
	local, err := LoadLocal(root)
	if err != nil {
		return Job{}, err
	}
	return MergeLocal(job, local), nil
}
